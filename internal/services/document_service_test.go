package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studyleave/studyleave-api/config"
	"github.com/studyleave/studyleave-api/internal/models"
	"github.com/studyleave/studyleave-api/internal/services"
	apperrors "github.com/studyleave/studyleave-api/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Typst: config.TypstConfig{
			Binary:         "typst",
			TemplatePath:   "template/template.typ",
			CompileTimeout: 30 * time.Second,
		},
	}
}

func buildRequest() *models.DocumentRequest {
	return &models.DocumentRequest{
		Language:     "it",
		Name:         "Elena Ferro",
		ID:           "123456",
		Degree:       "Computer Science",
		Course:       "Advanced Programming",
		Professor:    "Prof. Rossi",
		Date:         "2023-10-01",
		City:         "Trento",
		ImagePath:    "imgs/unitn.jpg",
		ActivityType: models.ActivityLectures,
	}
}

func TestDocumentService_BuildDocument_Success(t *testing.T) {
	mockCompiler := new(MockCompiler)
	service := services.NewDocumentService(mockCompiler, testConfig())

	pdfBytes := []byte("%PDF-1.7 fake")
	var captured map[string]string

	mockCompiler.On("Compile", mock.Anything, "template/template.typ", mock.MatchedBy(func(inputs map[string]string) bool {
		captured = inputs
		return len(inputs) == 1
	})).Return(pdfBytes, nil).Once()

	pdf, err := service.BuildDocument(context.Background(), buildRequest())
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, pdf)

	// The serialized bundle is a flat string-valued JSON document
	require.Contains(t, captured, "inputs")
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(captured["inputs"]), &payload))
	assert.Equal(t, "2023-10-01", payload["date"])
	assert.Equal(t, "lectures", payload["activity_type"])
	assert.Equal(t, "Elena Ferro", payload["name"])
	assert.Equal(t, "imgs/unitn.jpg", payload["image_path"])

	mockCompiler.AssertExpectations(t)
}

func TestDocumentService_BuildDocument_DateDefaultsToTomorrow(t *testing.T) {
	mockCompiler := new(MockCompiler)
	service := services.NewDocumentService(mockCompiler, testConfig())

	var captured map[string]string
	mockCompiler.On("Compile", mock.Anything, mock.Anything, mock.MatchedBy(func(inputs map[string]string) bool {
		captured = inputs
		return true
	})).Return([]byte("pdf"), nil).Once()

	req := buildRequest()
	req.Date = ""

	_, err := service.BuildDocument(context.Background(), req)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(captured["inputs"]), &payload))

	tomorrow := time.Now().AddDate(0, 0, 1).Format(models.DateLayout)
	assert.Equal(t, tomorrow, payload["date"])
}

func TestDocumentService_BuildDocument_ValidationFailure(t *testing.T) {
	mockCompiler := new(MockCompiler)
	service := services.NewDocumentService(mockCompiler, testConfig())

	req := buildRequest()
	req.Course = "" // required for lectures

	pdf, err := service.BuildDocument(context.Background(), req)
	assert.Nil(t, pdf)

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "course_required_for_lectures", verrs[0].Reason)

	// Invalid input never reaches the compiler
	mockCompiler.AssertNotCalled(t, "Compile")
}

func TestDocumentService_BuildDocument_CompilerFailure(t *testing.T) {
	mockCompiler := new(MockCompiler)
	service := services.NewDocumentService(mockCompiler, testConfig())

	mockCompiler.On("Compile", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("typst compile template/template.typ: unknown variable")).Once()

	pdf, err := service.BuildDocument(context.Background(), buildRequest())
	assert.Nil(t, pdf)
	assert.ErrorIs(t, err, apperrors.ErrRenderFailed)
	assert.Contains(t, err.Error(), "unknown variable")

	mockCompiler.AssertExpectations(t)
}

func TestDocumentService_BuildDocument_AppliesCompileTimeout(t *testing.T) {
	mockCompiler := new(MockCompiler)
	service := services.NewDocumentService(mockCompiler, testConfig())

	mockCompiler.On("Compile", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return hasDeadline
	}), mock.Anything, mock.Anything).Return([]byte("pdf"), nil).Once()

	_, err := service.BuildDocument(context.Background(), buildRequest())
	require.NoError(t, err)

	mockCompiler.AssertExpectations(t)
}

func TestDocumentService_ActivityTypes(t *testing.T) {
	service := services.NewDocumentService(new(MockCompiler), testConfig())

	infos := service.ActivityTypes()
	require.Len(t, infos, 4)
	assert.Equal(t, "lectures", infos[0].Value)
	assert.Equal(t, "Oral Exam", infos[1].Name)
}
