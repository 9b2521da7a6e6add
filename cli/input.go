package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/asaidimu/go-mongosql/core/schema"
	"github.com/spf13/cobra"
)

// InputOptions holds the flags selecting where a query structure is read from.
type InputOptions struct {
	File    string // .json, .yaml, .yml or .cue file
	CUEPath string // value to export from a CUE file
}

func (in *InputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.File, "file", "f", "", "read the query from a .json, .yaml/.yml or .cue file")
	cmd.Flags().StringVar(&in.CUEPath, "cue-path", "", "path of the value to export from a CUE file")
}

// Load returns the query structure given as the first argument, in --file, or
// on stdin when neither is present or the argument is "-".
func (in *InputOptions) Load(cmd *cobra.Command, args []string) (any, error) {
	if in.File != "" {
		if len(args) > 0 {
			return nil, NewExitError(ExitCommandError, "give the query either as an argument or with --file, not both")
		}
		return in.loadFile(in.File)
	}

	var data []byte
	if len(args) == 0 || args[0] == "-" {
		var err error
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "reading stdin", err)
		}
	} else {
		data = []byte(args[0])
	}

	v, err := schema.Parse(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid query", err)
	}
	return v, nil
}

func (in *InputOptions) loadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "reading query file", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if in.CUEPath != "" && ext != ".cue" {
		return nil, NewExitError(ExitCommandError, "--cue-path only applies to .cue files")
	}

	var v any
	switch ext {
	case ".json":
		v, err = schema.ParseJSON(data)
	case ".yaml", ".yml":
		v, err = schema.ParseYAML(data)
	case ".cue":
		v, err = schema.ParseCUE(data, path, in.CUEPath)
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unsupported query file extension %q", ext))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid query file", err)
	}
	return v, nil
}
