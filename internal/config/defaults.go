package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Provider: ProviderConfig{
			Name:        "openai",
			APIBase:     "https://api.openai.com/v1",
			APIKey:      "${OPENAI_API_KEY}",
			Model:       DefaultOpenAIModel,
			Temperature: 0.85,
			TopP:        0.9,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    "~/.replyai/local",
		},
		Client: ClientConfig{
			Endpoint:       "http://127.0.0.1:5000",
			TimeoutSeconds: 120,
		},
	}
}
