package view

import (
	"strings"

	"WhipStore/internal/catalog"
)

const (
	GalleryEmptyMessage = "No hay imágenes disponibles"
	GalleryPlaceholder  = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iNDAwIiBoZWlnaHQ9IjQwMCIgdmlld0JveD0iMCAwIDQwMCA0MDAiIGZpbGw9Im5vbmUiIHhtbG5zPSJodHRwOi8vd3d3LnczLm9yZy8yMDAwL3N2ZyI+PHJlY3Qgd2lkdGg9IjQwMCIgaGVpZ2h0PSI0MDAiIGZpbGw9IiNFRUVFRUUiLz48cGF0aCBkPSJNMTUwIDIwMEg0MDBWMzAwSDI1MFYyMEgyMDBWMjAwSDE1MFoiIGZpbGw9IiM5OTkiLz48L3N2Zz4="
)

type Thumbnail struct {
	URL    string `json:"url"`
	Index  int    `json:"index"`
	Active bool   `json:"active"`
}

type Gallery struct {
	ProductID    string      `json:"product_id"`
	Name         string      `json:"name"`
	Index        int         `json:"index"`
	Current      string      `json:"current"`
	Thumbnails   []Thumbnail `json:"thumbnails"`
	Prev         int         `json:"prev"`
	Next         int         `json:"next"`
	NavEnabled   bool        `json:"nav_enabled"`
	EmptyMessage string      `json:"empty_message,omitempty"`
}

// GalleryImages lists the main image first, then the additional images
// without blanks or repeats of the main one.
func GalleryImages(p catalog.Product) []string {
	var out []string
	main := strings.TrimSpace(p.Image)
	if main != "" {
		out = append(out, main)
	}
	for _, img := range p.Images {
		img = strings.TrimSpace(img)
		if img == "" || img == main {
			continue
		}
		out = append(out, img)
	}
	return out
}

// ImageURL keeps absolute URLs and roots relative ones.
func ImageURL(s string) string {
	if strings.HasPrefix(s, "http") || strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}

// BuildGallery selects index, wrapping around in both directions.
func BuildGallery(p catalog.Product, index int) Gallery {
	imgs := GalleryImages(p)
	g := Gallery{ProductID: string(p.ID), Name: p.Name}

	n := len(imgs)
	if n == 0 {
		g.Current = GalleryPlaceholder
		g.EmptyMessage = GalleryEmptyMessage
		return g
	}

	index = wrap(index, n)
	g.Index = index
	g.Current = ImageURL(imgs[index])
	g.Prev = wrap(index-1, n)
	g.Next = wrap(index+1, n)
	g.NavEnabled = n > 1

	g.Thumbnails = make([]Thumbnail, n)
	for i, img := range imgs {
		g.Thumbnails[i] = Thumbnail{URL: ImageURL(img), Index: i, Active: i == index}
	}
	return g
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
