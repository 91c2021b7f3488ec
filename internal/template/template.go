// Package template renders the {variable} placeholders used in post-command
// configuration. Only the fixed variable set is substituted; any other brace
// token is left verbatim, so strings containing shell syntax stay intact.
package template

import (
	"regexp"
	"strconv"
)

// Variable names recognized by Render.
const (
	VarBranchName = "branch_name"
	VarDBName     = "db_name"
	VarDBHost     = "db_host"
	VarDBPort     = "db_port"
	VarDBUser     = "db_user"
	VarDBPassword = "db_password"
	VarTemplateDB = "template_db"
	VarPrefix     = "prefix"
)

// Bindings holds the values substituted for the recognized variables.
type Bindings struct {
	BranchName   string
	DatabaseName string
	Host         string
	Port         uint16
	User         string
	Password     string
	TemplateDB   string
	Prefix       string
}

var tokenPattern = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// Render substitutes every recognized {variable} token in s with its bound
// value. Unrecognized tokens pass through unchanged. No recursive or
// conditional evaluation is performed.
func Render(s string, b Bindings) string {
	values := b.values()
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := token[1 : len(token)-1]
		if value, ok := values[name]; ok {
			return value
		}
		return token
	})
}

// Variables returns the recognized variable names with their bound values,
// in a stable order suitable for display.
func Variables(b Bindings) []Variable {
	values := b.values()
	vars := make([]Variable, 0, len(variableOrder))
	for _, name := range variableOrder {
		vars = append(vars, Variable{Name: name, Value: values[name]})
	}
	return vars
}

// Variable is a recognized template variable and its current value.
type Variable struct {
	Name  string
	Value string
}

var variableOrder = []string{
	VarBranchName,
	VarDBName,
	VarDBHost,
	VarDBPort,
	VarDBUser,
	VarDBPassword,
	VarTemplateDB,
	VarPrefix,
}

func (b Bindings) values() map[string]string {
	return map[string]string{
		VarBranchName: b.BranchName,
		VarDBName:     b.DatabaseName,
		VarDBHost:     b.Host,
		VarDBPort:     strconv.Itoa(int(b.Port)),
		VarDBUser:     b.User,
		VarDBPassword: b.Password,
		VarTemplateDB: b.TemplateDB,
		VarPrefix:     b.Prefix,
	}
}
