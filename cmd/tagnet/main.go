// Command tagnet builds hashtag co-occurrence graphs from exported posts.
//
//	tagnet build --config run.yaml --out out/ --db runs.db
//	tagnet pairs --config run.yaml --top 10
//	tagnet stats --config run.yaml
//	tagnet extract --policy marker "Kyiv today #StandWithUkraine #NATO"
package main

import (
	"errors"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}
