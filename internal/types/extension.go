package types

// ExtensionConfig is the normalized HTTP-binding metadata of a declaration.
// Every field is optional; the empty string means unset.
type ExtensionConfig struct {
	Position   string `json:"position,omitempty" yaml:"position,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Method     string `json:"method,omitempty" yaml:"method,omitempty"`
	URI        string `json:"uri,omitempty" yaml:"uri,omitempty"`
	URIPrefix  string `json:"uri_prefix,omitempty" yaml:"uri_prefix,omitempty"`
	Serializer string `json:"serializer,omitempty" yaml:"serializer,omitempty"`
	Group      string `json:"group,omitempty" yaml:"group,omitempty"`
	Custom     string `json:"custom,omitempty" yaml:"custom,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	WebType    string `json:"web_type,omitempty" yaml:"web_type,omitempty"`
	ValueType  string `json:"value_type,omitempty" yaml:"value_type,omitempty"`
	Tag        string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// IsEmpty reports whether no field is set
func (c ExtensionConfig) IsEmpty() bool {
	return c == ExtensionConfig{}
}
