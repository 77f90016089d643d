package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Def defines a command-line flag with its configuration.
type (
	Type interface {
		string | int | bool
	}

	Def[T Type] struct {
		Name        string
		ViperKey    string
		Default     T
		Description string
	}
)

// Declare declares flags on cmd and binds them to viper configuration keys.
func Declare[T Type](cmd *cobra.Command, defs []Def[T]) error {
	for _, def := range defs {
		if err := declare(cmd, def); err != nil {
			return err
		}
	}
	return nil
}

// MustDeclare is Declare for package init functions.
func MustDeclare[T Type](cmd *cobra.Command, defs []Def[T]) {
	if err := Declare(cmd, defs); err != nil {
		panic(err)
	}
}

// declare declares a single flag. The type parameter T determines the flag type (string, int, or bool).
func declare[T Type](cmd *cobra.Command, def Def[T]) error {
	switch v := any(def.Default).(type) {
	case string:
		cmd.Flags().String(def.Name, v, def.Description)
	case int:
		cmd.Flags().Int(def.Name, v, def.Description)
	case bool:
		cmd.Flags().Bool(def.Name, v, def.Description)
	}
	return viper.BindPFlag(def.ViperKey, cmd.Flags().Lookup(def.Name))
}
