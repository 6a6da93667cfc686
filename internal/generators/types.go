package generators

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Person is one generated person as returned by gerar_pessoa.
type Person struct {
	Nome          string     `json:"nome"`
	Idade         FlexString `json:"idade"`
	CPF           FlexString `json:"cpf"`
	RG            FlexString `json:"rg"`
	DataNasc      string     `json:"data_nasc"`
	Sexo          string     `json:"sexo"`
	Signo         string     `json:"signo"`
	Mae           string     `json:"mae"`
	Pai           string     `json:"pai"`
	Email         string     `json:"email"`
	Senha         string     `json:"senha"`
	CEP           FlexString `json:"cep"`
	Endereco      string     `json:"endereco"`
	Numero        FlexString `json:"numero"`
	Bairro        string     `json:"bairro"`
	Cidade        string     `json:"cidade"`
	Estado        string     `json:"estado"`
	TelefoneFixo  FlexString `json:"telefone_fixo"`
	Celular       FlexString `json:"celular"`
	Altura        FlexString `json:"altura"`
	Peso          FlexString `json:"peso"`
	TipoSanguineo string     `json:"tipo_sanguineo"`
	Cor           string     `json:"cor"`
}

// FlexString holds a value the provider may send as a JSON string or a JSON
// number. Numbers keep their literal digits so nothing passes through
// float64.
type FlexString string

// UnmarshalJSON accepts strings, numbers and null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the raw value.
func (f FlexString) String() string { return string(f) }
