package commands

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hay-kot/voldir/internal/volume"
)

// volumeEnv is the expression environment for a single volume.
//
//   - name:    display name reported by the OS
//   - folder:  mount folder name under the container
//   - mount:   full mount path
//   - renamed: true when the folder differs from the display name
func volumeEnv(v volume.Volume) map[string]any {
	return map[string]any{
		"name":    v.DisplayName,
		"folder":  v.Folder(),
		"mount":   v.MountRoot.String(),
		"renamed": v.DisplayName != v.Folder(),
	}
}

// compileExpr compiles a volume filter once for reuse
func compileExpr(code string) (*vm.Program, error) {
	if code == "" {
		code = "true" // default: match everything
	}

	return expr.Compile(code, expr.Env(volumeEnv(volume.Volume{})), expr.AsBool())
}

// evalCompiledExpr evaluates a pre-compiled expression against a volume
func evalCompiledExpr(program *vm.Program, v volume.Volume) (bool, error) {
	output, err := expr.Run(program, volumeEnv(v))
	if err != nil {
		return false, err
	}

	// expr.AsBool() ensures output is always bool
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("expression did not evaluate to boolean, got %T", output)
	}

	return result, nil
}

// filterVolumes returns the volumes matching code, preserving order.
func filterVolumes(volumes []volume.Volume, code string) ([]volume.Volume, error) {
	program, err := compileExpr(code)
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}

	matched := []volume.Volume{}
	for _, v := range volumes {
		ok, err := evalCompiledExpr(program, v)
		if err != nil {
			return nil, fmt.Errorf("expression evaluation failed for volume %s: %w", v.MountRoot, err)
		}
		if ok {
			matched = append(matched, v)
		}
	}

	return matched, nil
}
