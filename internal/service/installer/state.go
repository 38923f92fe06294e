package installer

import (
	"fmt"
	"slices"
	"strings"
)

// Intermediate answers that never reach the .env file.
const (
	keyChannel = "_CHANNEL"
)

type InstallState struct {
	RuntimePath string
	EnvVars     map[string]string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{
		RuntimePath: runtimePath,
		EnvVars:     make(map[string]string),
	}
}

// Provider returns the selected LLM provider id.
func (s *InstallState) Provider() string {
	return s.EnvVars["LLM_PROVIDER"]
}

// Render returns the collected variables as sorted .env lines. Empty values and
// intermediate keys are left out.
func (s *InstallState) Render() string {
	keys := make([]string, 0, len(s.EnvVars))
	for k, v := range s.EnvVars {
		if v == "" || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, quoteEnv(s.EnvVars[k]))
	}
	return b.String()
}

func quoteEnv(v string) string {
	if strings.ContainsAny(v, " #\"'\t") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
