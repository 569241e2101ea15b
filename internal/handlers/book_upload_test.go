package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseMultipartBookRequestFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("name", "  Dune  ")
	_ = writer.WriteField("title", "Dune")
	_ = writer.WriteField("category", "sci-fi")
	_ = writer.WriteField("price", "19.99")
	_ = writer.WriteField("quantity", "12")
	_ = writer.WriteField("offer", "15")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/books", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	parsed, err := parseMultipartBookRequest(c)
	if err != nil {
		t.Fatalf("parseMultipartBookRequest returned error: %v", err)
	}
	if !parsed.NameSet || parsed.Name != "Dune" {
		t.Fatalf("expected trimmed name Dune, got %+v", parsed)
	}
	if !parsed.PriceSet || parsed.Price != 19.99 {
		t.Fatalf("expected price 19.99, got %+v", parsed)
	}
	if !parsed.QuantitySet || parsed.Quantity != 12 {
		t.Fatalf("expected quantity 12, got %+v", parsed)
	}
	if !parsed.OfferSet || parsed.Offer != 15 {
		t.Fatalf("expected offer 15, got %+v", parsed)
	}
	if parsed.CodeSet || parsed.DescriptionSet {
		t.Fatalf("expected absent fields to stay unset, got %+v", parsed)
	}
}

func TestParseMultipartBookRequestBadQuantity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("quantity", "a lot")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/books", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if _, err := parseMultipartBookRequest(c); err == nil {
		t.Fatal("expected error for non-numeric quantity")
	}
}

func TestParseMultipartBookRequestRejectsTooManyImages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for i := 0; i < maxBookImages+1; i++ {
		part, err := writer.CreateFormFile(bookImgFormName, "cover.png")
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		_, _ = part.Write([]byte("png-bytes"))
	}
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/books", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if _, err := parseMultipartBookRequest(c); err == nil {
		t.Fatal("expected error when image count exceeds the limit")
	}
}

func TestSaveBookImageRejectsUnsupportedExtension(t *testing.T) {
	file := &multipart.FileHeader{Filename: "cover.bmp", Size: 10}
	if _, err := saveBookImage(file); err == nil {
		t.Fatal("expected error for unsupported image type")
	}
}

func TestSaveBookImageRejectsOversizedFile(t *testing.T) {
	file := &multipart.FileHeader{Filename: "cover.png", Size: maxBookImgSize + 1}
	if _, err := saveBookImage(file); err == nil {
		t.Fatal("expected error for oversized image")
	}
}
