package workflow

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/logger"
)

var nonIdentChars = regexp.MustCompile(`[^0-9a-zA-Z_]`)

// reservedNames can never be used as program identifiers: language keywords
// and the names every generated program relies on.
var reservedNames = []string{
	"and", "break", "continue", "def", "elif", "else", "for", "if", "in",
	"lambda", "load", "not", "or", "pass", "return", "while",
	"as", "assert", "async", "await", "class", "del", "except", "finally",
	"from", "global", "import", "is", "nonlocal", "raise", "try", "with", "yield",
	"True", "False", "None",
	"datetime", "timedelta",
}

// DeriveIdentifier turns a human label into a program identifier: snake
// case, only [0-9a-zA-Z_], never starting with a digit. Labels without any
// usable character become "task".
func DeriveIdentifier(raw string) string {
	name := nonIdentChars.ReplaceAllString(strcase.ToSnake(strings.TrimSpace(raw)), "")
	name = strings.TrimLeftFunc(name, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r)
	})
	if name == "" {
		return "task"
	}
	return name
}

func isReserved(name string) bool {
	for _, r := range reservedNames {
		if r == name {
			return true
		}
	}
	return false
}

// WorkflowIdentifier derives the program identifier of the workflow object.
// A name that is a reserved word gets the first _0, _1, ... suffix that is
// not.
func WorkflowIdentifier(raw string) string {
	name := DeriveIdentifier(raw)
	if !isReserved(name) {
		return name
	}
	base := name
	for i := 0; isReserved(name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	logger.Op.Debugf("Workflow '%s' named '%s' to avoid a reserved word", raw, name)
	return name
}

// ResolveCollisions assigns every task a unique program identifier. The
// workflow name and reserved words are taken up front; a derived name already
// in use gets the first free _0, _1, ... suffix. Two tasks with the same raw
// identifier are an error.
func ResolveCollisions(workflowName string, tasks []*Task) error {
	taken := make(map[string]bool, len(tasks)+len(reservedNames)+1)
	taken[workflowName] = true
	for _, r := range reservedNames {
		taken[r] = true
	}

	rawSeen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		raw := t.RawID()
		if rawSeen[raw] {
			return werrors.NewDuplicateIdentifierError(raw)
		}
		rawSeen[raw] = true

		name := DeriveIdentifier(raw)
		if taken[name] {
			base := name
			for i := 0; taken[name]; i++ {
				name = fmt.Sprintf("%s_%d", base, i)
			}
			logger.Op.Debugf("Task '%s' renamed to '%s' to avoid a name collision", raw, name)
		}
		taken[name] = true
		t.Name = name
	}
	return nil
}
