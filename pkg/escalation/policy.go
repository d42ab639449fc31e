package escalation

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the on-disk form of an escalation term set.
//
//	terms:
//	  - danger
//	  - critical
//	  - delete
//	  - bite
type Policy struct {
	Terms []string `yaml:"terms"`
	// Extend appends Terms to DefaultTerms instead of replacing them.
	Extend bool `yaml:"extend"`
}

// Classifier builds a Classifier from the policy.
func (p Policy) Classifier() *Classifier {
	terms := p.Terms
	if p.Extend {
		terms = append(append([]string{}, DefaultTerms...), p.Terms...)
	}
	return New(WithTerms(terms...))
}

// LoadPolicy decodes a YAML policy from r.
func LoadPolicy(r io.Reader) (Policy, error) {
	var p Policy
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return Policy{}, errors.Join(ErrInvalidPolicy, err)
	}
	if len(p.Terms) == 0 {
		return Policy{}, ErrEmptyPolicy
	}
	return p, nil
}

// LoadPolicyFile reads a YAML policy from path.
func LoadPolicyFile(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, errors.Join(ErrInvalidPolicy, err)
	}
	defer f.Close()
	return LoadPolicy(f)
}
