package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName               = "bool"
	booleanFlagTrueLiteral            = "true"
	booleanFlagLongPrefix             = "--"
	booleanFlagShortPrefix            = "-"
	booleanFlagValueSeparator         = "="
	booleanFlagAcceptedValuesListing  = "true, false, yes, no, on, off, 1, 0"
	booleanFlagInvalidValueErrorLabel = "invalid boolean value"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseBooleanLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	parsed, known := booleanFlagLiterals[normalized]
	return parsed, known
}

// booleanFlagValue accepts yes/no style literals in addition to strconv booleans.
type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	parsed, known := parseBooleanLiteral(input)
	if !known {
		return fmt.Errorf("%s %q for --%s; accepted values: %s", booleanFlagInvalidValueErrorLabel, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag adds a boolean flag that may be given bare (--print), with a value
// (--print=no) or followed by a separate literal (--print no).
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	*target = defaultValue
	flag := flagSet.VarPF(&booleanFlagValue{target: target, flagKey: name}, name, shorthand, usage)
	flag.DefValue = strconv.FormatBool(defaultValue)
	flag.NoOptDefVal = booleanFlagTrueLiteral
}

// normalizeBooleanFlagArguments joins "--flag literal" and "-f literal" pairs into
// "--flag=literal" for the boolean flags of command and its subcommands, so the literal is
// not taken as a positional argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := map[string]string{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}

	normalized := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		currentArgument := arguments[argumentIndex]
		if currentArgument == booleanFlagLongPrefix {
			return append(normalized, arguments[argumentIndex:]...)
		}
		flagName, isBooleanFlag := booleanFlags[currentArgument]
		if isBooleanFlag && argumentIndex+1 < len(arguments) {
			nextArgument := arguments[argumentIndex+1]
			if _, known := booleanFlagLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; known {
				normalized = append(normalized, booleanFlagLongPrefix+flagName+booleanFlagValueSeparator+nextArgument)
				argumentIndex++
				continue
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

// collectBooleanFlagNames maps the command line spellings of every boolean flag ("--name"
// and "-x") to the flag's long name.
func collectBooleanFlagNames(command *cobra.Command, target map[string]string) {
	visit := func(flagSet *pflag.FlagSet) {
		flagSet.VisitAll(func(flag *pflag.Flag) {
			if flag.Value.Type() != booleanFlagTypeName {
				return
			}
			target[booleanFlagLongPrefix+flag.Name] = flag.Name
			if flag.Shorthand != "" {
				target[booleanFlagShortPrefix+flag.Shorthand] = flag.Name
			}
		})
	}
	visit(command.PersistentFlags())
	visit(command.Flags())
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}
