package main

import (
	"context"
	"fmt"
	"os"

	"panel-brief/pkg/locator"
)

func main() {
	// Defaults to the 晚点聊 show
	showID := "61933ace1b4320461e91fd55"

	if len(os.Args) > 1 {
		showID = os.Args[1]
	}

	loc := locator.New(locator.Config{})

	// Print first 10 episodes
	maxEpisodes := 10
	res := loc.LocateDetailed(context.Background(), showID, maxEpisodes)

	fmt.Printf("Found %d episodes via %s strategy:\n\n", len(res.Episodes), res.Strategy)

	for i, ep := range res.Episodes {
		fmt.Printf("Episode %d:\n", i+1)
		fmt.Printf("  ID: %s\n", ep.ID)
		fmt.Printf("  Title: %s\n", ep.Title)
		if ep.HasAudio() {
			fmt.Printf("  Audio: %s\n", ep.AudioURL)
		}
		fmt.Println()
	}
}
