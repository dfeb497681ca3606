// Command bridle streams completions from any supported backend family.
package main

import (
	"os"

	_ "github.com/i2y/bridle/anthropic"
	_ "github.com/i2y/bridle/gemini"
	_ "github.com/i2y/bridle/openai"
	_ "github.com/i2y/bridle/vertex"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
