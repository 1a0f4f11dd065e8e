package agent

// Persona defines an agent's display identity.
type Persona struct {
	Name        string `json:"name" yaml:"name"`
	Personality string `json:"personality" yaml:"personality"`
}

// DefaultPersona is used for any field left empty.
var DefaultPersona = Persona{
	Name:        "Agent",
	Personality: "helpful assistant",
}

func (p Persona) withDefaults() Persona {
	if p.Name == "" {
		p.Name = DefaultPersona.Name
	}
	if p.Personality == "" {
		p.Personality = DefaultPersona.Personality
	}
	return p
}
