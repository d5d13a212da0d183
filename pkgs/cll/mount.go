// Package cll provides helpers for composing urfave/cli/v3 applications.
package cll

import "github.com/urfave/cli/v3"

// Registerable adds its commands or flags to a root command.
type Registerable interface {
	Register(*cli.Command) *cli.Command
}

// Register applies each Registerable to root in order.
//
//	root := &cli.Command{Name: "voldir"}
//	root = cll.Register(root, resolveCmd, locateCmd, volumesCmd)
func Register(root *cli.Command, subs ...Registerable) *cli.Command {
	for _, s := range subs {
		root = s.Register(root)
	}

	return root
}

// EnvWithPrefix returns a constructor for environment variable sources that
// share prefix.
//
//	env := cll.EnvWithPrefix("VOLDIR_")
//	flag := &cli.StringFlag{
//		Name:    "container",
//		Sources: env("CONTAINER"), // reads VOLDIR_CONTAINER
//	}
func EnvWithPrefix(prefix string) func(strs ...string) cli.ValueSourceChain {
	return func(strs ...string) cli.ValueSourceChain {
		withPrefix := make([]string, len(strs))

		for i, str := range strs {
			withPrefix[i] = prefix + str
		}

		return cli.EnvVars(withPrefix...)
	}
}
