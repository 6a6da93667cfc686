package fourdevs

import "strings"

// State is one Brazilian federative unit.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var states = []State{
	{"AC", "Acre"},
	{"AL", "Alagoas"},
	{"AP", "Amapá"},
	{"AM", "Amazonas"},
	{"BA", "Bahia"},
	{"CE", "Ceará"},
	{"DF", "Distrito Federal"},
	{"ES", "Espírito Santo"},
	{"GO", "Goiás"},
	{"MA", "Maranhão"},
	{"MT", "Mato Grosso"},
	{"MS", "Mato Grosso do Sul"},
	{"MG", "Minas Gerais"},
	{"PA", "Pará"},
	{"PB", "Paraíba"},
	{"PR", "Paraná"},
	{"PE", "Pernambuco"},
	{"PI", "Piauí"},
	{"RJ", "Rio de Janeiro"},
	{"RN", "Rio Grande do Norte"},
	{"RS", "Rio Grande do Sul"},
	{"RO", "Rondônia"},
	{"RR", "Roraima"},
	{"SC", "Santa Catarina"},
	{"SP", "São Paulo"},
	{"SE", "Sergipe"},
	{"TO", "Tocantins"},
}

var stateNames = func() map[string]string {
	m := make(map[string]string, len(states))
	for _, s := range states {
		m[s.Code] = s.Name
	}
	return m
}()

// States returns the 27 federative units in canonical order.
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// NormalizeUF upper-cases and trims a state code.
func NormalizeUF(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidUF reports whether code is one of the 27 UF codes. Case is ignored.
func IsValidUF(code string) bool {
	_, ok := stateNames[NormalizeUF(code)]
	return ok
}

// StateName returns the display name for a UF code.
func StateName(code string) (string, bool) {
	name, ok := stateNames[NormalizeUF(code)]
	return name, ok
}
