package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/llm"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/media"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path> [gemini|claude|both]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY    - Required for Gemini\n")
		fmt.Fprintf(os.Stderr, "  ANTHROPIC_API_KEY - Required for Claude\n")
		os.Exit(1)
	}

	imagePath := os.Args[1]
	provider := "both"
	if len(os.Args) >= 3 {
		provider = os.Args[2]
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	mimeType := media.SniffMIME(imageData)
	ctx := context.Background()

	switch provider {
	case "gemini":
		runGemini(ctx, imageData, mimeType)
	case "claude":
		runClaude(ctx, imageData, mimeType)
	case "both":
		runGemini(ctx, imageData, mimeType)
		fmt.Println("\n" + strings.Repeat("-", 50) + "\n")
		runClaude(ctx, imageData, mimeType)
	default:
		fmt.Fprintf(os.Stderr, "Unknown provider: %s (use gemini, claude, or both)\n", provider)
		os.Exit(1)
	}
}

func runGemini(ctx context.Context, imageData []byte, mimeType string) {
	fmt.Println("=== GEMINI ===")

	analyzer, err := llm.NewGeminiAnalyzer(ctx)
	if err != nil {
		fmt.Printf("Error creating Gemini analyzer: %v\n", err)
		return
	}

	result, err := analyzer.ExtractItems(ctx, imageData, mimeType)
	if err != nil {
		fmt.Printf("Error analyzing image: %v\n", err)
		return
	}

	printResult(result)
}

func runClaude(ctx context.Context, imageData []byte, mimeType string) {
	fmt.Println("=== CLAUDE ===")

	analyzer := llm.NewClaudeAnalyzer(llm.ClaudeOpts{
		APIKey: os.Getenv("ANTHROPIC_API_KEY"),
	})

	result, err := analyzer.ExtractItems(ctx, imageData, mimeType)
	if err != nil {
		fmt.Printf("Error analyzing image: %v\n", err)
		return
	}

	printResult(result)
}

func printResult(result *llm.ExtractionResult) {
	for i, item := range result.Items {
		fmt.Printf("%d. %s %s (%s)\n", i+1, item.Icon, item.Name, item.Category)
	}
	fmt.Println()
	fmt.Printf("Tokens: %d in / %d out / %d total\n",
		result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens)
	fmt.Printf("Cost:   $%.6f\n", result.Usage.CostUSD)
}
