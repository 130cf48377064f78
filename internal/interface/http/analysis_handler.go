package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/label-insight/internal/domain/analysis"
	"github.com/yanqian/label-insight/internal/infra/uploads"
)

const (
	messageNoFilePart     = "No file part in the request"
	messageNoFileSelected = "No file selected for uploading"
	messageFileType       = "Allowed file types are png, jpg, jpeg, gif, webp"
	messageNoText         = "No text provided for analysis"
	uploadField           = "file"
)

// UploadImage stores a label photo and runs the full OCR and analysis pipeline.
func (h *Handler) UploadImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large", messageTooLarge, err))
		case c.Request.MultipartForm != nil && len(c.Request.MultipartForm.Value[uploadField]) > 0:
			// a part without a filename is parsed as a plain value
			abortWithError(c, NewHTTPError(http.StatusBadRequest, analysis.CodeInvalidInput, messageNoFileSelected, err))
		default:
			abortWithError(c, NewHTTPError(http.StatusBadRequest, analysis.CodeInvalidInput, messageNoFilePart, err))
		}
		return
	}
	if fileHeader.Filename == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, analysis.CodeInvalidInput, messageNoFileSelected, nil))
		return
	}
	if !uploads.Allowed(fileHeader.Filename) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, analysis.CodeInvalidInput, messageFileType, nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, analysis.CodeInvalidInput, "failed to read upload", err))
		return
	}
	defer file.Close()
	stored, err := h.uploads.Save(c.Request.Context(), fileHeader.Filename, file, requestBaseURL(c))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to store upload", err))
		return
	}

	result, err := h.analysisSvc.AnalyzeImage(c.Request.Context(), analysis.ImageRequest{
		Path:    stored.Path,
		Profile: h.loadProfile(c, userID),
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	result["image_url"] = stored.URL
	h.historySvc.Record(c.Request.Context(), userID, analysis.SourceImage, stored.URL, result)
	c.JSON(http.StatusOK, result)
}

// QuickAnalysis runs the analysis over label text supplied as {"text": "..."}.
func (h *Handler) QuickAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	text, ok := decodeText(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, analysis.CodeInvalidInput, messageNoText, nil))
		return
	}

	result, err := h.analysisSvc.AnalyzeText(c.Request.Context(), analysis.TextRequest{
		Text:    text,
		Profile: h.loadProfile(c, userID),
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	h.historySvc.Record(c.Request.Context(), userID, analysis.SourceText, "", result)
	c.JSON(http.StatusOK, result)
}

// decodeText accepts any JSON object with a string "text" member, empty included.
func decodeText(c *gin.Context) (string, bool) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		return "", false
	}
	raw, ok := body["text"]
	if !ok {
		return "", false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil || string(raw) == "null" {
		return "", false
	}
	return text, true
}

// loadProfile returns nil when the user has none; a lookup failure only
// costs personalization.
func (h *Handler) loadProfile(c *gin.Context, userID int64) analysis.Profile {
	p, found, err := h.profileSvc.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Warn("profile lookup failed, analysing without it", "user_id", userID, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	return analysis.Profile(p.Attributes())
}
