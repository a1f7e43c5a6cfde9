package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shorlog-studio/internal/wizard"
)

func render(v wizard.StepView) {
	switch view := v.(type) {
	case wizard.ThumbnailView:
		fmt.Printf("Step 1/3: %d images, room for %d more\n", len(view.Images), view.Remaining)
		printImages(view.Images, -1)
	case wizard.EditView:
		state := "not uploaded"
		if view.Uploading {
			state = "uploading"
		} else if view.Uploaded {
			state = "uploaded"
		}
		fmt.Printf("Step 2/3: %d images (%s)\n", len(view.Images), state)
		printImages(view.Images, view.Cursor)
	case wizard.ComposeView:
		fmt.Printf("Step 3/3: %d images, %d characters left\n", len(view.Thumbnails), view.CharsRemaining)
		if view.Content != "" {
			fmt.Printf("  %s\n", view.Content)
		}
		if len(view.Hashtags) > 0 {
			fmt.Printf("  #%s\n", strings.Join(view.Hashtags, " #"))
		}
	}
}

func printImages(images []wizard.LocalImage, cursor int) {
	for i, img := range images {
		marker := " "
		if i == cursor {
			marker = ">"
		}
		fmt.Printf(" %s %2d  %-4s  %-8s  %s\n", marker, i, img.Source, img.AspectRatio, img.OriginalFilename)
	}
}

func prompt(question string) string {
	fmt.Print(question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
