package export

import "gopkg.in/yaml.v3"

type YAMLEncoder struct{}

func (YAMLEncoder) EncodeRows(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	return yaml.Marshal(rows)
}

func (YAMLEncoder) ContentType() string { return "application/yaml" }
func (YAMLEncoder) Extension() string   { return "yaml" }
