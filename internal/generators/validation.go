package generators

import (
	"fmt"
	"regexp"
	"strings"

	apierrors "github.com/olgasafonova/fourdevs-mcp-server/internal/errors"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
)

// Parameter bounds
const (
	MaxAge      = 120
	MinQuantity = 1
	MaxQuantity = 30

	DefaultSexo            = "I"
	DefaultPontuacao       = "N"
	DefaultCertificateType = "Indiferente"
)

var certificateTypes = []string{"nascimento", "casamento", "casamento_religioso", "obito", "Indiferente"}

// Expected shapes of generated numbers. A mismatch is only logged.
var (
	cnhPattern      = regexp.MustCompile(`^\d{11}$`)
	pisPlainPattern = regexp.MustCompile(`^\d{11}$`)
	pisPunctPattern = regexp.MustCompile(`^\d{3}\.\d{5}\.\d{2}-\d$`)
	voterPattern    = regexp.MustCompile(`^\d{12}$`)
)

// ValidateSexo normalizes the gender flag, defaulting to random.
func ValidateSexo(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "":
		return DefaultSexo, nil
	case "H", "M", "I":
		return s, nil
	}
	return "", apierrors.NewValidationError("sexo", s, "must be H (male), M (female) or I (random)")
}

// ValidatePontuacao normalizes the punctuation flag, defaulting to N.
func ValidatePontuacao(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "":
		return DefaultPontuacao, nil
	case "S", "N":
		return s, nil
	}
	return "", apierrors.NewValidationError("pontuacao", s, "must be S (yes) or N (no)")
}

// ValidateAge checks the optional age. Zero means random.
func ValidateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > MaxAge {
		return apierrors.NewValidationError("idade", fmt.Sprint(*age), fmt.Sprintf("must be between 0 and %d", MaxAge))
	}
	return nil
}

// ValidateQuantity checks the batch size, defaulting to one person.
func ValidateQuantity(qty *int) (int, error) {
	if qty == nil {
		return MinQuantity, nil
	}
	if *qty < MinQuantity || *qty > MaxQuantity {
		return 0, apierrors.NewValidationError("txt_qtde", fmt.Sprint(*qty), fmt.Sprintf("must be between %d and %d", MinQuantity, MaxQuantity))
	}
	return *qty, nil
}

// ValidateUF normalizes a state code. Empty is accepted unless required.
func ValidateUF(field, code string, required bool) (string, error) {
	uf := fourdevs.NormalizeUF(code)
	if uf == "" {
		if required {
			return "", apierrors.NewValidationError(field, "", "Brazilian UF code is required")
		}
		return "", nil
	}
	if !fourdevs.IsValidUF(uf) {
		return "", apierrors.NewValidationError(field, code, "must be a valid Brazilian UF code (e.g., SC, SP, RJ)")
	}
	return uf, nil
}

// ValidateCityCode checks an optional provider city code.
func ValidateCityCode(code *int) error {
	if code != nil && *code <= 0 {
		return apierrors.NewValidationError("cep_cidade", fmt.Sprint(*code), "must be a positive integer")
	}
	return nil
}

// ValidateCertificateType maps the requested type to its canonical spelling.
func ValidateCertificateType(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCertificateType, nil
	}
	for _, t := range certificateTypes {
		if strings.EqualFold(s, t) {
			return t, nil
		}
	}
	return "", apierrors.NewValidationError("tipo_certidao", s, "must be one of "+strings.Join(certificateTypes, ", "))
}

// personRequest is the validated, normalized form of PersonArgs.
type personRequest struct {
	sexo      string
	pontuacao string
	idade     int
	quantity  int
	uf        string
	cityCode  *int
	cityName  string
}

// validatePersonArgs runs every person check before any network call.
func validatePersonArgs(args PersonArgs) (personRequest, error) {
	var req personRequest
	var err error

	if req.sexo, err = ValidateSexo(args.Sexo); err != nil {
		return req, err
	}
	if req.pontuacao, err = ValidatePontuacao(args.Pontuacao); err != nil {
		return req, err
	}
	if err = ValidateAge(args.Idade); err != nil {
		return req, err
	}
	if args.Idade != nil {
		req.idade = *args.Idade
	}
	if req.quantity, err = ValidateQuantity(args.TxtQtde); err != nil {
		return req, err
	}
	if req.uf, err = ValidateUF("cep_estado", args.CepEstado, false); err != nil {
		return req, err
	}
	if err = ValidateCityCode(args.CepCidade); err != nil {
		return req, err
	}

	req.cityCode = args.CepCidade
	req.cityName = strings.TrimSpace(args.CidadeNome)

	if req.cityCode != nil && req.cityName != "" {
		return req, apierrors.NewValidationError("cidade_nome", req.cityName, "cep_cidade and cidade_nome are mutually exclusive")
	}
	if req.cityCode != nil && req.uf == "" {
		return req, apierrors.NewValidationError("cep_estado", "", "required when cep_cidade is specified")
	}
	if req.cityName != "" && req.uf == "" {
		return req, apierrors.NewValidationError("cep_estado", "", "required when cidade_nome is specified")
	}
	if req.cityName != "" && !fourdevs.CanResolve(req.cityName, req.uf) {
		return req, apierrors.NewValidationError("cidade_nome", req.cityName, "city name must have at least 2 characters")
	}
	return req, nil
}
