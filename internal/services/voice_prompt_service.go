package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/sirupsen/logrus"

	"github.com/adstudio/backend/internal/middleware"
)

const (
	maxAudioBody     = 10 * 1024 * 1024
	recognizeTimeout = 30 * time.Second
)

// VoicePromptService turns a recorded edit instruction into text for the
// image editor.
type VoicePromptService struct {
	client *speech.Client
	logger logrus.FieldLogger
}

// TranscribeRequest is base64 audio plus optional recognition hints
// @Description Voice prompt transcription request
type TranscribeRequest struct {
	Audio        string `json:"audio" validate:"required"`
	Encoding     string `json:"encoding" example:"WEBM_OPUS"`
	SampleRate   int    `json:"sample_rate" example:"48000"`
	LanguageCode string `json:"language_code" example:"en-US"`
}

type TranscribeResponse struct {
	Transcript string  `json:"transcript" example:"make the background a soft pastel blue"`
	Confidence float32 `json:"confidence"`
	Duration   float64 `json:"duration_seconds"`
}

// NewVoicePromptService falls back to mock transcripts when no Google
// credentials are available.
func NewVoicePromptService(ctx context.Context, logger logrus.FieldLogger) *VoicePromptService {
	logger = logger.WithField("component", "voice")
	client, err := speech.NewClient(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize speech client, using mock transcription")
		return &VoicePromptService{logger: logger}
	}
	return &VoicePromptService{client: client, logger: logger}
}

// TranscribePrompt transcribes a spoken edit instruction
// @Summary Transcribe voice prompt
// @Description Converts recorded speech into a text prompt for image editing
// @Tags prompts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TranscribeRequest true "Audio payload"
// @Success 200 {object} TranscribeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /prompts/transcribe [post]
func (s *VoicePromptService) TranscribePrompt(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req TranscribeRequest
	if err := decodeJSONLimit(w, r, &req, maxAudioBody); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if req.Audio == "" {
		SendErrorResponse(w, "Audio is required", http.StatusBadRequest, nil)
		return
	}

	if req.Encoding == "" {
		req.Encoding = "WEBM_OPUS"
	}
	if req.SampleRate == 0 {
		req.SampleRate = 48000
	}
	if req.LanguageCode == "" {
		req.LanguageCode = "en-US"
	}

	start := time.Now()
	transcript, confidence, err := s.Transcribe(r.Context(), req)
	duration := time.Since(start).Seconds()

	log := s.logger.WithField("user_id", userID)
	if err != nil {
		log.WithError(err).Warn("Transcription failed")
		SendErrorResponse(w, "Failed to transcribe audio", http.StatusInternalServerError, nil)
		return
	}

	log.WithField("confidence", confidence).Info("Transcribed voice prompt")
	writeJSON(w, http.StatusOK, TranscribeResponse{
		Transcript: transcript,
		Confidence: confidence,
		Duration:   duration,
	})
}

func (s *VoicePromptService) Transcribe(ctx context.Context, req TranscribeRequest) (string, float32, error) {
	audioBytes, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return "", 0, fmt.Errorf("failed to decode audio: %w", err)
	}
	if len(audioBytes) == 0 {
		return "", 0, errors.New("audio data is empty")
	}

	if s.client == nil {
		return "Mock transcription: make the background a soft pastel blue", 0.95, nil
	}

	encoding, err := parseEncoding(req.Encoding)
	if err != nil {
		return "", 0, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, recognizeTimeout)
	defer cancel()

	resp, err := s.client.Recognize(timeoutCtx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            int32(req.SampleRate),
			LanguageCode:               req.LanguageCode,
			EnableAutomaticPunctuation: true,
			Model:                      "latest_short",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioBytes},
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("recognition failed: %w", err)
	}

	return joinAlternatives(resp.GetResults())
}

func joinAlternatives(results []*speechpb.SpeechRecognitionResult) (string, float32, error) {
	var transcript strings.Builder
	var totalConfidence float32
	var count int

	for _, result := range results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alternative := result.Alternatives[0]
		transcript.WriteString(alternative.Transcript)
		transcript.WriteString(" ")
		totalConfidence += alternative.Confidence
		count++
	}

	if count == 0 {
		return "", 0, errors.New("no transcription results")
	}
	return strings.TrimSpace(transcript.String()), totalConfidence / float32(count), nil
}

func parseEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

func (s *VoicePromptService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
