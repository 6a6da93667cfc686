package generators

import "github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"

// PersonArgs contains parameters for person generation
type PersonArgs struct {
	Sexo       string `json:"sexo,omitempty" jsonschema:"Gender: H (male), M (female), I (random). Default I"`
	Pontuacao  string `json:"pontuacao,omitempty" jsonschema:"Punctuate documents: S (yes) or N (no). Default N"`
	Idade      *int   `json:"idade,omitempty" jsonschema:"Age from 0 to 120, 0 picks a random age. Default 0"`
	CepEstado  string `json:"cep_estado,omitempty" jsonschema:"Brazilian state UF code for the address (e.g. SC, SP)"`
	TxtQtde    *int   `json:"txt_qtde,omitempty" jsonschema:"Number of people to generate, 1 to 30. Default 1"`
	CepCidade  *int   `json:"cep_cidade,omitempty" jsonschema:"Provider city code (requires cep_estado). Get codes from carregar_cidades"`
	CidadeNome string `json:"cidade_nome,omitempty" jsonschema:"City name resolved automatically (requires cep_estado, exclusive with cep_cidade)"`
}

// PersonResult is the result of person generation
type PersonResult struct {
	People []Person             `json:"people"`
	Count  int                  `json:"count"`
	City   *fourdevs.Resolution `json:"city,omitempty"`
}

// LoadCitiesArgs contains parameters for loading a state's cities
type LoadCitiesArgs struct {
	CepEstado string `json:"cep_estado" jsonschema:"Brazilian state UF code (2 letters, e.g. SC, SP, RJ)"`
}

// LoadCitiesResult lists the cities of one state
type LoadCitiesResult struct {
	UF          string               `json:"uf"`
	StateName   string               `json:"state_name"`
	TotalCities int                  `json:"total_cities"`
	Cities      []fourdevs.CityEntry `json:"cities"`
}

// CertificateArgs contains parameters for certificate number generation
type CertificateArgs struct {
	Pontuacao    string `json:"pontuacao,omitempty" jsonschema:"Punctuate the number: S (yes) or N (no). Default N"`
	TipoCertidao string `json:"tipo_certidao,omitempty" jsonschema:"nascimento, casamento, casamento_religioso, obito or Indiferente (random). Default Indiferente"`
}

// CertificateResult is a generated certificate number
type CertificateResult struct {
	CertificateType   string `json:"certificate_type"`
	Punctuation       string `json:"punctuation"`
	CertificateNumber string `json:"certificate_number"`
	GeneratedAt       string `json:"generated_at"`
}

// CNHArgs is empty: the driver's license generator takes no parameters
type CNHArgs struct{}

// CNHResult is a generated driver's license number
type CNHResult struct {
	DocumentType string `json:"document_type"`
	CNHNumber    string `json:"cnh_number"`
	Format       string `json:"format"`
	GeneratedAt  string `json:"generated_at"`
}

// PISArgs contains parameters for PIS generation
type PISArgs struct {
	Pontuacao string `json:"pontuacao,omitempty" jsonschema:"Punctuate the number as XXX.XXXXX.XX-X: S (yes) or N (no). Default N"`
}

// PISResult is a generated PIS number
type PISResult struct {
	DocumentType string `json:"document_type"`
	PISNumber    string `json:"pis_number"`
	Punctuation  string `json:"punctuation"`
	Format       string `json:"format"`
	GeneratedAt  string `json:"generated_at"`
}

// VoterIDArgs contains parameters for voter registration generation
type VoterIDArgs struct {
	Estado string `json:"estado,omitempty" jsonschema:"Optional Brazilian state UF code (2 letters) for a state-specific number"`
}

// VoterIDResult is a generated voter registration number
type VoterIDResult struct {
	DocumentType            string `json:"document_type"`
	VoterRegistrationNumber string `json:"voter_registration_number"`
	State                   string `json:"state"`
	Format                  string `json:"format"`
	GeneratedAt             string `json:"generated_at"`
}
