package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mmhmddd/linah-store-server/internal/config"
)

const (
	maxBookImages   = 5
	maxBookImgSize  = 5 << 20
	bookImgFormName = "imgs"
)

type MultipartBookInput struct {
	Name           string
	NameSet        bool
	Title          string
	TitleSet       bool
	Category       string
	CategorySet    bool
	Code           string
	CodeSet        bool
	Description    string
	DescriptionSet bool
	Price          float64
	PriceSet       bool
	Quantity       int
	QuantitySet    bool
	Offer          float64
	OfferSet       bool
	Imgs           []string
}

func parseMultipartBookRequest(c *gin.Context) (MultipartBookInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		log.Println("[BOOK] [ERROR] multipart parse failed:", err)
		return MultipartBookInput{}, err
	}

	input := MultipartBookInput{}

	// ---- STRING FIELDS ----

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}

	if value, ok := c.GetPostForm("title"); ok {
		input.Title = strings.TrimSpace(value)
		input.TitleSet = true
	}

	if value, ok := c.GetPostForm("category"); ok {
		input.Category = strings.TrimSpace(value)
		input.CategorySet = true
	}

	if value, ok := c.GetPostForm("code"); ok {
		input.Code = strings.TrimSpace(value)
		input.CodeSet = true
	}

	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}

	// ---- NUMBER FIELDS ----

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return MultipartBookInput{}, fmt.Errorf("invalid price: %s", value)
		}
		input.Price = parsed
		input.PriceSet = true
	}

	if value, ok := c.GetPostForm("quantity"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return MultipartBookInput{}, fmt.Errorf("invalid quantity: %s", value)
		}
		input.Quantity = parsed
		input.QuantitySet = true
	}

	if value, ok := c.GetPostForm("offer"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return MultipartBookInput{}, fmt.Errorf("invalid offer: %s", value)
		}
		input.Offer = parsed
		input.OfferSet = true
	}

	// ---- IMAGE FILES ----

	if c.Request.MultipartForm != nil {
		files := c.Request.MultipartForm.File[bookImgFormName]
		if len(files) > maxBookImages {
			return MultipartBookInput{}, fmt.Errorf("too many images (max %d)", maxBookImages)
		}
		for _, file := range files {
			path, err := saveBookImage(file)
			if err != nil {
				return MultipartBookInput{}, err
			}
			input.Imgs = append(input.Imgs, path)
		}
	}

	return input, nil
}

func saveBookImage(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	allowedExtensions := map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".gif":  {},
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	if file.Size > maxBookImgSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}

	filename := uuid.NewString() + extension

	dir := config.AppEnv.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Println("[UPLOAD] [ERROR] create directory failed:", err)
		return "", err
	}

	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Println("[UPLOAD] [ERROR] create file failed:", err)
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		log.Println("[UPLOAD] [ERROR] open upload failed:", err)
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Println("[UPLOAD] [ERROR] save file failed:", err)
		return "", err
	}

	return "/uploads/" + filename, nil
}

func respondMultipartError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}
