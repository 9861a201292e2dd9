package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"safii-be/storage"
)

// ImageStore is implemented by storage.ImageStore.
type ImageStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) error
	PublicURL(objectPath string) string
}

type UploadController struct {
	store ImageStore
}

func NewUploadController(store ImageStore) *UploadController {
	return &UploadController{store: store}
}

// UploadImage stores the multipart "image" file and returns its public URL.
// The optional "title" form field becomes part of the file name.
func (uc *UploadController) UploadImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		validationFailed(c, []string{"image is required"})
		return
	}
	if file.Size > storage.MaxImageSize {
		validationFailed(c, []string{"image must be at most 10MB"})
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("Error opening upload: %v", err)
		validationFailed(c, []string{"image could not be read"})
		return
	}
	defer src.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	objectPath := storage.ObjectPath(userID.Hex(), c.PostForm("title"), file.Filename)
	if err := uc.store.Upload(ctx, objectPath, src); err != nil {
		switch {
		case errors.Is(err, storage.ErrImageTooBig):
			validationFailed(c, []string{"image must be at most 10MB"})
		case errors.Is(err, storage.ErrInvalidPath):
			validationFailed(c, []string{"image name is invalid"})
		default:
			respondError(c, "uploading the image", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded successfully",
		"url":     uc.store.PublicURL(objectPath),
	})
}
