package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/TrueFit/internal/models"
)

// Prompter reads interactive answers line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a Prompter reading from in and printing labels to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Scanner exposes the input so a command loop can share it with prompts.
func (p *Prompter) Scanner() *bufio.Scanner {
	return p.in
}

// Ask prints label and returns the trimmed answer. io.EOF is returned when
// input is exhausted.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// AskDefault is Ask with a value used when the answer is empty.
func (p *Prompter) AskDefault(label, def string) (string, error) {
	v, err := p.Ask(fmt.Sprintf("%s [%s]: ", label, def))
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// Passwords asks for a password and its confirmation. Matching is checked
// by the caller so the mismatch is reported like any other validation error.
func (p *Prompter) Passwords() (password, confirm string, err error) {
	if password, err = p.Ask("Password: "); err != nil {
		return "", "", err
	}
	if confirm, err = p.Ask("Confirm password: "); err != nil {
		return "", "", err
	}
	return password, confirm, nil
}

// ClothData collects the metadata of a clothing item. imgURL is filled in
// when the image is already hosted.
func (p *Prompter) ClothData(imgURL string) (models.ClothData, error) {
	var (
		d   models.ClothData
		err error
	)
	d.ImgURL = imgURL

	if d.Typ, err = p.Ask("Type (tshirts/jeans/skirts): "); err != nil {
		return d, err
	}
	if d.Name, err = p.Ask("Name: "); err != nil {
		return d, err
	}
	sizeStr, err := p.Ask("Size: ")
	if err != nil {
		return d, err
	}
	if sizeStr != "" {
		d.Size, err = strconv.ParseFloat(sizeStr, 64)
		if err != nil {
			return d, fmt.Errorf("invalid size %q: %w", sizeStr, err)
		}
	}
	if d.SizeMetrics, err = p.AskDefault("Size metrics", "EU"); err != nil {
		return d, err
	}
	if d.Color, err = p.Ask("Color: "); err != nil {
		return d, err
	}
	if d.Material, err = p.Ask("Material: "); err != nil {
		return d, err
	}
	if d.Brand, err = p.Ask("Brand: "); err != nil {
		return d, err
	}

	switch d.Typ {
	case models.CategoryTshirts:
		if d.NeckType, err = p.Ask("Neck type: "); err != nil {
			return d, err
		}
		if d.SleeveType, err = p.Ask("Sleeve type: "); err != nil {
			return d, err
		}
	case models.CategoryJeans:
		if d.FitType, err = p.Ask("Fit type: "); err != nil {
			return d, err
		}
	case models.CategorySkirts:
		if d.SkirtType, err = p.Ask("Skirt type: "); err != nil {
			return d, err
		}
	}
	return d, nil
}
