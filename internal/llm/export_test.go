package llm

// SetOpenAIBaseURLForTest points backend at a local httptest.Server
// instead of the real OpenAI API.
func SetOpenAIBaseURLForTest(b *OpenAIBackend, url string) { b.baseURL = url }

// SetAnthropicBaseURLForTest points backend at a local httptest.Server
// instead of the real Anthropic API.
func SetAnthropicBaseURLForTest(b *AnthropicBackend, url string) { b.baseURL = url }

// SetGeminiBaseURLForTest points backend at a local httptest.Server
// instead of the real Gemini API.
func SetGeminiBaseURLForTest(b *GeminiBackend, url string) { b.baseURL = url }
