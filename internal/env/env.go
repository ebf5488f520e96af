// Package env resolves the deployment environment from ENV.
package env

import (
	"os"
	"strings"
)

type Environment string

const (
	Local      Environment = "local"
	Production Environment = "production"

	Key string = "ENV"
)

func (e Environment) Valid() bool {
	switch e {
	case Local, Production:
		return true
	}
	return false
}

func (e Environment) IsProduction() bool { return e == Production }

// Parse falls back to Local for anything it does not recognise.
func Parse(raw string) Environment {
	e := Environment(strings.ToLower(strings.TrimSpace(raw)))
	if !e.Valid() {
		return Local
	}
	return e
}

var Current = Local

func init() {
	Current = Parse(os.Getenv(Key))
}
