package apitypes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakamo-wni/weathercomment/internal/apitypes"
)

func TestValidateGenerateRequest_RequiresLocationName(t *testing.T) {
	err := apitypes.ValidateGenerateRequest(apitypes.GenerateRequest{})
	assert.Error(t, err)
}

func TestValidateGenerateRequest_RejectsUnknownProvider(t *testing.T) {
	err := apitypes.ValidateGenerateRequest(apitypes.GenerateRequest{
		Location:    apitypes.Location{Name: "Tokyo"},
		LLMProvider: "not-a-provider",
	})
	assert.Error(t, err)
}

func TestValidateGenerateRequest_RejectsOutOfRangeTemperature(t *testing.T) {
	temp := 3.5
	err := apitypes.ValidateGenerateRequest(apitypes.GenerateRequest{
		Location:    apitypes.Location{Name: "Tokyo"},
		Temperature: &temp,
	})
	assert.Error(t, err)
}

func TestValidateGenerateRequest_AcceptsMinimalValidRequest(t *testing.T) {
	err := apitypes.ValidateGenerateRequest(apitypes.GenerateRequest{
		Location: apitypes.Location{Name: "Tokyo"},
	})
	assert.NoError(t, err)
}
