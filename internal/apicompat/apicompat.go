// Package apicompat compares two OpenAPI documents and lists the changes that
// would break an existing client: removed paths, removed operations and
// removed response codes. Additions are always allowed.
package apicompat

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var httpMethods = []string{"get", "put", "post", "delete", "patch", "head", "options"}

// Surface maps path -> method -> set of documented response codes.
type Surface map[string]map[string]map[string]bool

type operation struct {
	Responses map[string]yaml.Node `yaml:"responses"`
}

// Parse reads an OpenAPI or Swagger document. YAML is a superset of JSON, so
// both swagger.yaml and the generated swagger.json are accepted.
func Parse(raw []byte) (Surface, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Paths == nil {
		return nil, errors.New("document has no paths")
	}

	surface := make(Surface, len(doc.Paths))
	for path, item := range doc.Paths {
		ops := map[string]map[string]bool{}
		for key, node := range item {
			method := strings.ToLower(strings.TrimSpace(key))
			if !isHTTPMethod(method) || node.Kind != yaml.MappingNode {
				continue
			}
			var op operation
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			codes := make(map[string]bool, len(op.Responses))
			for code := range op.Responses {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					codes[code] = true
				}
			}
			ops[method] = codes
		}
		if len(ops) > 0 {
			surface[path] = ops
		}
	}
	return surface, nil
}

func isHTTPMethod(m string) bool {
	for _, known := range httpMethods {
		if m == known {
			return true
		}
	}
	return false
}

// Breaking lists, sorted, everything in base that revision no longer offers.
func Breaking(base, revision Surface) []string {
	var out []string
	for path, ops := range base {
		revOps, ok := revision[path]
		if !ok {
			out = append(out, "removed path: "+path)
			continue
		}
		for method, codes := range ops {
			revCodes, ok := revOps[method]
			if !ok {
				out = append(out, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range codes {
				if !revCodes[code] {
					out = append(out, fmt.Sprintf("removed response: %s %s %s", strings.ToUpper(method), path, code))
				}
			}
		}
	}
	sort.Strings(out)
	return out
}
