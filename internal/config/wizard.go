package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. The caller decides where to save it.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to kilimobot! Let's configure your deployment.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Primary LLM backend.
	providerPrompt := promptui.Select{
		Label: "Select primary LLM backend",
		Items: []string{"google", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}

	keyPrompt := promptui.Prompt{
		Label: fmt.Sprintf("API key for %s", providerStr),
		Mask:  '*',
	}
	apiKey, err := keyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api key input: %w", err)
	}
	switch providerStr {
	case "google":
		cfg.LLM.GoogleAPIKey = apiKey
	case "openai":
		cfg.LLM.OpenAIAPIKey = apiKey
	}

	// 2. Default language.
	langPrompt := promptui.Select{
		Label: "Default conversation language",
		Items: []string{"en (English)", "sw (Kiswahili)"},
	}
	idx, _, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("language selection: %w", err)
	}
	if idx == 1 {
		cfg.DefaultLanguage = LanguageSwahili
	}

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("must be a port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port input: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 4. Optional Redis cache tier.
	redisPrompt := promptui.Prompt{
		Label:   "Redis address for the shared response cache (blank for local-only)",
		Default: "",
	}
	redisAddr, err := redisPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("redis input: %w", err)
	}
	cfg.Cache.RedisAddr = redisAddr

	return cfg, nil
}
