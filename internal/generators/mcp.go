package generators

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	apierrors "github.com/olgasafonova/fourdevs-mcp-server/internal/errors"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
)

// GeneratePerson is the MCP handler for gerar_pessoa
func (s *Service) GeneratePerson(ctx context.Context, args PersonArgs) (PersonResult, error) {
	req, err := validatePersonArgs(args)
	if err != nil {
		return PersonResult{}, err
	}

	var resolution *fourdevs.Resolution
	if req.cityName != "" {
		resolution, err = s.resolver.Resolve(ctx, req.cityName, req.uf)
		if err != nil {
			return PersonResult{}, err
		}
		req.cityCode = &resolution.CityID
	}

	params := fourdevs.Params{
		"sexo":      req.sexo,
		"pontuacao": req.pontuacao,
		"txt_qtde":  req.quantity,
	}
	if req.idade > 0 {
		params["idade"] = req.idade
	}
	if req.uf != "" {
		params["cep_estado"] = req.uf
	}
	if req.cityCode != nil {
		params["cep_cidade"] = *req.cityCode
	}

	resp, err := s.sender.Send(ctx, fourdevs.ActionPerson, params)
	if err != nil {
		return PersonResult{}, err
	}
	if resp.IsClientError() {
		return PersonResult{}, clientError(fourdevs.ActionPerson, resp)
	}
	if !resp.IsStructured() {
		return PersonResult{}, apierrors.NewContractError(fourdevs.ActionPerson, "expected JSON array of persons, got %s content", resp.Kind)
	}
	if trimmed := bytes.TrimSpace(resp.Data); len(trimmed) == 0 || trimmed[0] != '[' {
		return PersonResult{}, apierrors.NewContractError(fourdevs.ActionPerson, "expected JSON array of persons")
	}

	var people []Person
	if err := json.Unmarshal(resp.Data, &people); err != nil {
		return PersonResult{}, apierrors.NewContractError(fourdevs.ActionPerson, "malformed person data: %v", err)
	}
	if len(people) == 0 {
		return PersonResult{}, apierrors.NewContractError(fourdevs.ActionPerson, "no person data generated")
	}

	return PersonResult{People: people, Count: len(people), City: resolution}, nil
}

// LoadCities is the MCP handler for carregar_cidades
func (s *Service) LoadCities(ctx context.Context, args LoadCitiesArgs) (LoadCitiesResult, error) {
	uf, err := ValidateUF("cep_estado", args.CepEstado, true)
	if err != nil {
		return LoadCitiesResult{}, err
	}

	cities, err := s.resolver.LoadCatalog(ctx, uf)
	if err != nil {
		return LoadCitiesResult{}, err
	}
	if len(cities) == 0 {
		return LoadCitiesResult{}, apierrors.NewContractError(fourdevs.ActionLoadCities, "no cities found for UF %s", uf)
	}

	name, _ := fourdevs.StateName(uf)
	return LoadCitiesResult{
		UF:          uf,
		StateName:   name,
		TotalCities: len(cities),
		Cities:      cities,
	}, nil
}

// GenerateCertificate is the MCP handler for gerador_certidao
func (s *Service) GenerateCertificate(ctx context.Context, args CertificateArgs) (CertificateResult, error) {
	pontuacao, err := ValidatePontuacao(args.Pontuacao)
	if err != nil {
		return CertificateResult{}, err
	}
	tipo, err := ValidateCertificateType(args.TipoCertidao)
	if err != nil {
		return CertificateResult{}, err
	}

	number, err := s.document(ctx, fourdevs.ActionCertificate, fourdevs.Params{
		"pontuacao":     pontuacao,
		"tipo_certidao": tipo,
	})
	if err != nil {
		return CertificateResult{}, err
	}

	return CertificateResult{
		CertificateType:   tipo,
		Punctuation:       pontuacao,
		CertificateNumber: number,
		GeneratedAt:       s.timestamp(),
	}, nil
}

// GenerateCNH is the MCP handler for gerar_cnh
func (s *Service) GenerateCNH(ctx context.Context, _ CNHArgs) (CNHResult, error) {
	number, err := s.document(ctx, fourdevs.ActionCNH, nil)
	if err != nil {
		return CNHResult{}, err
	}
	if !cnhPattern.MatchString(number) {
		s.logger.Warn("CNH number has unexpected format", "cnh_number", number)
	}

	return CNHResult{
		DocumentType: "CNH",
		CNHNumber:    number,
		Format:       "Numeric only (11 digits)",
		GeneratedAt:  s.timestamp(),
	}, nil
}

// GeneratePIS is the MCP handler for gerar_pis
func (s *Service) GeneratePIS(ctx context.Context, args PISArgs) (PISResult, error) {
	pontuacao, err := ValidatePontuacao(args.Pontuacao)
	if err != nil {
		return PISResult{}, err
	}

	number, err := s.document(ctx, fourdevs.ActionPIS, fourdevs.Params{"pontuacao": pontuacao})
	if err != nil {
		return PISResult{}, err
	}

	result := PISResult{
		DocumentType: "PIS",
		PISNumber:    number,
		Punctuation:  "Not included",
		Format:       "XXXXXXXXXXX",
		GeneratedAt:  s.timestamp(),
	}
	pattern := pisPlainPattern
	if pontuacao == "S" {
		result.Punctuation = "Included"
		result.Format = "XXX.XXXXX.XX-X"
		pattern = pisPunctPattern
	}
	if !pattern.MatchString(number) {
		s.logger.Warn("PIS number has unexpected format", "pis_number", number, "pontuacao", pontuacao)
	}
	return result, nil
}

// GenerateVoterID is the MCP handler for gerar_titulo_eleitor
func (s *Service) GenerateVoterID(ctx context.Context, args VoterIDArgs) (VoterIDResult, error) {
	uf, err := ValidateUF("estado", args.Estado, false)
	if err != nil {
		return VoterIDResult{}, err
	}

	params := fourdevs.Params{}
	if uf != "" {
		params["estado"] = uf
	}
	number, err := s.document(ctx, fourdevs.ActionVoterID, params)
	if err != nil {
		return VoterIDResult{}, err
	}
	if !voterPattern.MatchString(number) {
		s.logger.Warn("Voter registration number has unexpected format", "voter_registration_number", number)
	}

	state := uf
	if state == "" {
		state = "Random"
	}
	return VoterIDResult{
		DocumentType:            "Título de Eleitor",
		VoterRegistrationNumber: number,
		State:                   state,
		Format:                  "Numeric only (12 digits)",
		GeneratedAt:             s.timestamp(),
	}, nil
}

// document performs a call whose reply must be a single non-blank text value.
// The value is kept as a string so long numbers never lose precision.
func (s *Service) document(ctx context.Context, action string, params fourdevs.Params) (string, error) {
	resp, err := s.sender.Send(ctx, action, params)
	if err != nil {
		return "", err
	}
	if resp.IsClientError() {
		return "", clientError(action, resp)
	}
	if !resp.IsRawText() {
		return "", apierrors.NewContractError(action, "expected plain text number, got %s content", resp.Kind)
	}
	number := strings.TrimSpace(resp.Text)
	if number == "" {
		return "", apierrors.NewContractError(action, "empty number generated")
	}
	return number, nil
}

func clientError(action string, resp *fourdevs.Response) error {
	return &apierrors.ProviderError{Action: action, StatusCode: resp.StatusCode, Body: resp.Excerpt()}
}
