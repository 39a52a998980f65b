// Command apicompat fails when an API revision drops a path, an operation or
// a response code that a saved baseline still documents.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"vidtube/docs"
	"vidtube/internal/apicompat"
)

func load(path string) (apicompat.Surface, error) {
	// An empty path means the doc compiled into this binary.
	if path == "" {
		return apicompat.Parse([]byte(docs.SwaggerInfo.ReadDoc()))
	}
	raw, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, err
	}
	return apicompat.Parse(raw)
}

func main() {
	basePath := flag.String("base", "", "baseline swagger.yaml or swagger.json")
	revisionPath := flag.String("revision", "", "revision to check, defaults to the built-in API doc")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	base, err := load(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load baseline: %v\n", err)
		os.Exit(1)
	}
	revision, err := load(strings.TrimSpace(*revisionPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load revision: %v\n", err)
		os.Exit(1)
	}

	if issues := apicompat.Breaking(base, revision); len(issues) > 0 {
		fmt.Fprintf(os.Stderr, "%d breaking change(s):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintln(os.Stderr, "  "+issue)
		}
		os.Exit(1)
	}
	fmt.Println("no breaking API changes")
}
