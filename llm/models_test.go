package llm

import "testing"

func TestGetModel(t *testing.T) {
	model, err := GetModel(ModelLlama33_70B)
	if err != nil {
		t.Fatalf("GetModel() error = %v", err)
	}
	if model.Provider != ProviderGroq {
		t.Errorf("Expected provider %s, got %s", ProviderGroq, model.Provider)
	}
	if model.Name != ModelLlama33_70B {
		t.Errorf("Expected name %s, got %s", ModelLlama33_70B, model.Name)
	}
}

func TestGetModel_Unknown(t *testing.T) {
	if _, err := GetModel("made-up-model"); err == nil {
		t.Fatal("Expected error for unknown model")
	}
}

func TestGetModelsByProvider(t *testing.T) {
	groqModels := GetModelsByProvider(ProviderGroq)
	if len(groqModels) == 0 {
		t.Fatal("Expected Groq models")
	}
	for _, model := range groqModels {
		if model.Provider != ProviderGroq {
			t.Errorf("Expected only Groq models, got %s from %s", model.Name, model.Provider)
		}
	}

	anthropicModels := GetModelsByProvider(ProviderAnthropic)
	if len(anthropicModels) == 0 {
		t.Fatal("Expected Anthropic models")
	}
}

func TestValidateModel(t *testing.T) {
	if err := ValidateModel(ModelClaude35Haiku); err != nil {
		t.Errorf("Expected valid model, got %v", err)
	}
	if err := ValidateModel("nope"); err == nil {
		t.Error("Expected error for invalid model")
	}
}

func TestAvailableModels_Consistent(t *testing.T) {
	for name, model := range AvailableModels {
		if model.Name != name {
			t.Errorf("Model key %q does not match name %q", name, model.Name)
		}
		if model.ContextSize <= 0 {
			t.Errorf("Model %q has no context size", name)
		}
	}
}
