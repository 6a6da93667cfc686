package tools

// AllTools contains all tool specifications for the 4Devs MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
//
// Generators are not idempotent: every call returns new random data.
var AllTools = []ToolSpec{
	// ==========================================================================
	// PERSON TOOLS
	// ==========================================================================
	{
		Name:         "gerar_pessoa",
		Method:       "GeneratePerson",
		Title:        "Generate Brazilian Person",
		Category:     "person",
		ErrorContext: "person-generator",
		Description: `Generate complete fake Brazilian people for testing: name, CPF, RG, birth date, parents, email, password, full address with CEP, phones, height, weight, blood type.

USE WHEN: User asks "generate a test user", "create fake Brazilian person data", "I need 10 people from São Paulo", "mock customer with CPF".

NOT FOR: A single document number without a person (use gerar_cnh, gerar_pis, gerar_titulo_eleitor or gerador_certidao).

PARAMETERS:
- sexo: H (male), M (female), I (random). Default I
- idade: 0-120, 0 for random. Default 0
- txt_qtde: How many people, 1-30. Default 1
- pontuacao: S to format CPF/RG/CEP with punctuation, N for digits only. Default N
- cep_estado: UF code (e.g. SC, SP) to place the address in one state
- cidade_nome: City name, resolved automatically; needs cep_estado. Accents and case are ignored
- cep_cidade: Numeric city code from carregar_cidades; needs cep_estado. Do not combine with cidade_nome

RETURNS: The generated people, their count and, when cidade_nome was given, the resolved city (city_id, city_name, exact_match). Ambiguous or unknown city names fail with suggestions.`,
		ReadOnly:  true,
		OpenWorld: true,
	},

	// ==========================================================================
	// LOCATION TOOLS
	// ==========================================================================
	{
		Name:         "carregar_cidades",
		Method:       "LoadCities",
		Title:        "List Cities of a Brazilian State",
		Category:     "location",
		ErrorContext: "city-loader",
		Description: `List every city of a Brazilian state with the numeric code used by gerar_pessoa.

USE WHEN: User asks "which cities are in SC", "what is the code for Campinas", or needs a cep_cidade value.

NOT FOR: Generating people in a known city (pass cidade_nome to gerar_pessoa directly).

PARAMETERS:
- cep_estado: UF code, 2 letters (required)

RETURNS: uf, state_name, total_cities and the cities as {code, name} pairs.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// DOCUMENT TOOLS
	// ==========================================================================
	{
		Name:         "gerador_certidao",
		Method:       "GenerateCertificate",
		Title:        "Generate Civil Registry Certificate Number",
		Category:     "document",
		ErrorContext: "certificate-generator",
		Description: `Generate a valid-format Brazilian civil registry certificate number (certidão).

USE WHEN: User asks "generate a birth certificate number", "fake marriage certificate", "certidão de óbito for tests".

NOT FOR: Identity documents (use gerar_pessoa for CPF/RG).

PARAMETERS:
- tipo_certidao: nascimento, casamento, casamento_religioso, obito or Indiferente. Default Indiferente
- pontuacao: S for punctuated, N for digits only. Default N

RETURNS: certificate_type, punctuation, certificate_number and generated_at.`,
		ReadOnly:  true,
		OpenWorld: true,
	},
	{
		Name:         "gerar_cnh",
		Method:       "GenerateCNH",
		Title:        "Generate CNH Number",
		Category:     "document",
		ErrorContext: "cnh-generator",
		Description: `Generate a valid Brazilian driver's license number (CNH).

USE WHEN: User asks "generate a CNH", "fake driver's license number", "carteira de motorista for testing".

NOT FOR: Full person records (use gerar_pessoa).

PARAMETERS: None.

RETURNS: document_type, cnh_number (11 digits), format and generated_at.`,
		ReadOnly:  true,
		OpenWorld: true,
	},
	{
		Name:         "gerar_pis",
		Method:       "GeneratePIS",
		Title:        "Generate PIS Number",
		Category:     "document",
		ErrorContext: "pis-generator",
		Description: `Generate a valid Brazilian PIS/PASEP social security number.

USE WHEN: User asks "generate a PIS", "NIS/PASEP number for tests", "fake social security number (Brazil)".

NOT FOR: CPF numbers (use gerar_pessoa).

PARAMETERS:
- pontuacao: S for XXX.XXXXX.XX-X, N for 11 digits. Default N

RETURNS: document_type, pis_number, punctuation, format and generated_at.`,
		ReadOnly:  true,
		OpenWorld: true,
	},
	{
		Name:         "gerar_titulo_eleitor",
		Method:       "GenerateVoterID",
		Title:        "Generate Voter Registration Number",
		Category:     "document",
		ErrorContext: "voter-generator",
		Description: `Generate a valid Brazilian voter registration number (título de eleitor).

USE WHEN: User asks "generate a título de eleitor", "voter ID from MG", "fake electoral registration".

NOT FOR: Other documents (use gerar_cnh, gerar_pis or gerador_certidao).

PARAMETERS:
- estado: Optional UF code; omit for a random state

RETURNS: document_type, voter_registration_number (12 digits), state ("Random" when not given), format and generated_at.`,
		ReadOnly:  true,
		OpenWorld: true,
	},
}
