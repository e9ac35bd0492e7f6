// Package main provides a one-shot utility for join-grant key generation.
//
// It emits the asymmetric keypair used to sign and verify meeting join
// grants.
package main

import (
	"os"

	"github.com/louisbranch/huddle.space/internal/platform/config"
	"github.com/louisbranch/huddle.space/internal/tools/joingrant"
)

func main() {
	if err := joingrant.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate join grant key: %v", err)
	}
}
