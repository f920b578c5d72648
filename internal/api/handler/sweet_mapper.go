package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
	"github.com/sweetshop/sweet-shop-api/internal/core/ports"
)

// Multipart form field names. Numeric fields arrive as strings and are parsed
// here; range and length rules live in the service layer.

func parseCreateForm(c echo.Context) (ports.CreateSweetInput, error) {
	var in ports.CreateSweetInput

	name := c.FormValue("name")
	category := c.FormValue("category")
	priceStr := c.FormValue("price")
	quantityStr := c.FormValue("quantity")

	if strings.TrimSpace(name) == "" || strings.TrimSpace(category) == "" || priceStr == "" || quantityStr == "" {
		return in, domain.Invalid("missing required fields: name, category, price, quantity")
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return in, domain.Invalid("price must be a non-negative number")
	}
	quantity, err := strconv.ParseInt(quantityStr, 10, 64)
	if err != nil {
		return in, domain.Invalid("quantity must be a non-negative integer")
	}

	image, err := readImage(c)
	if err != nil {
		return in, err
	}

	return ports.CreateSweetInput{
		Name:     name,
		Category: category,
		Price:    price,
		Quantity: quantity,
		Image:    image,
	}, nil
}

// parseUpdateForm builds a partial update: fields absent from the form, or
// present but empty, stay unchanged.
func parseUpdateForm(c echo.Context) (ports.UpdateSweetInput, error) {
	var in ports.UpdateSweetInput

	if v := c.FormValue("name"); v != "" {
		in.Name = &v
	}
	if v := c.FormValue("category"); v != "" {
		in.Category = &v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, domain.Invalid("price must be a non-negative number")
		}
		in.Price = &price
	}
	if v := c.FormValue("quantity"); v != "" {
		quantity, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, domain.Invalid("quantity must be a non-negative integer")
		}
		in.Quantity = &quantity
	}

	image, err := readImage(c)
	if err != nil {
		return in, err
	}
	in.Image = image

	return in, nil
}

// readImage extracts the optional "image" file from a multipart form. A
// missing file is not an error; an oversized one is rejected before reading.
func readImage(c echo.Context) (*domain.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}

	if fh.Size > domain.MaxImageBytes {
		return nil, domain.Invalid("file too large, maximum size is 5MB")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, domain.Invalid("file upload error")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.Invalid("file upload error")
	}

	return &domain.Image{
		Data:        data,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}
