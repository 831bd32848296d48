package models

import (
	"net/url"
	"strings"
)

// ImageType tells how an image payload is referenced: a remote URL or an
// inline base64 data string.
type ImageType string

const (
	ImageTypeURL    ImageType = "url"
	ImageTypeBase64 ImageType = "base64"
)

type FontFamily string

const (
	FontRoboto    FontFamily = "Roboto"
	FontSourGummy FontFamily = "Sour Gummy"
	FontPTSerif   FontFamily = "PT Serif"
)

type BackgroundType string

const (
	BackgroundDefault    BackgroundType = "default"
	BackgroundSolidColor BackgroundType = "solid-color"
	BackgroundGradient   BackgroundType = "gradient"
	BackgroundImage      BackgroundType = "image"
)

// Background is a tagged variant: Type selects which of the remaining fields
// are meaningful. A slide starts with the "default" placeholder until the
// user customizes it.
type Background struct {
	Type              BackgroundType `json:"type"`
	SolidColor        string         `json:"solidColor,omitempty"`
	GradientColorFrom string         `json:"gradientColorFrom,omitempty"`
	GradientColorTo   string         `json:"gradientColorTo,omitempty"`
	Img               string         `json:"img,omitempty"`
	ImgType           ImageType      `json:"imgType,omitempty"`
}

func DefaultBackground() Background {
	return Background{Type: BackgroundDefault}
}

func SolidColorBackground(color string) Background {
	return Background{Type: BackgroundSolidColor, SolidColor: color}
}

func GradientBackground(from, to string) Background {
	return Background{Type: BackgroundGradient, GradientColorFrom: from, GradientColorTo: to}
}

func ImageBackground(img string, imgType ImageType) Background {
	return Background{Type: BackgroundImage, Img: img, ImgType: imgType}
}

type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementVideo ElementType = "video"
	ElementCode  ElementType = "code"
)

// Language is the syntax-highlighting language of a code element.
type Language string

const (
	LanguageC          Language = "c"
	LanguagePython     Language = "python"
	LanguageJavascript Language = "javascript"
)

// SlideElement is a tagged variant discriminated by ElementType. All variants
// share the id and the percentage-based geometry; the remaining fields belong
// to one variant each (FontSize is shared by text and code). X, Y, Width and
// Height are percentages in [0,100]; range validation happens at the calling
// layer, never here.
type SlideElement struct {
	ID          string      `json:"id"`
	ElementType ElementType `json:"elementType"`
	X           float64     `json:"x" validate:"gte=0,lte=100"`
	Y           float64     `json:"y" validate:"gte=0,lte=100"`
	Width       float64     `json:"width" validate:"gte=0,lte=100"`
	Height      float64     `json:"height" validate:"gte=0,lte=100"`

	// text
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`

	// image
	Img     string    `json:"img,omitempty"`
	ImgType ImageType `json:"imgType,omitempty"`
	Alt     string    `json:"alt,omitempty"`

	// video. EmbedURL is derived from WatchURL on create/update; its json
	// key keeps the spelling found in already-persisted documents.
	WatchURL string `json:"watchUrl,omitempty"`
	EmbedURL string `json:"embdedUrl,omitempty"`
	Autoplay bool   `json:"autoplay,omitempty"`

	// code
	Code     string   `json:"code,omitempty"`
	Language Language `json:"language,omitempty"`
}

type Slide struct {
	ID         string         `json:"id"`
	Elements   []SlideElement `json:"elements"`
	FontFamily FontFamily     `json:"fontFamily"`
	Background Background     `json:"background"`
}

// Clone returns a copy whose Elements slice is independent of the receiver.
func (s Slide) Clone() Slide {
	out := s
	out.Elements = make([]SlideElement, len(s.Elements))
	copy(out.Elements, s.Elements)
	return out
}

// ElementIndex returns the position of the element with the given id, or -1.
func (s Slide) ElementIndex(id string) int {
	for i, el := range s.Elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

type Presentation struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Background    Background `json:"background"`
	CreateAt      int64      `json:"createAt"`
	Slides        []Slide    `json:"slides"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	ThumbnailType ImageType  `json:"thumbnailType,omitempty"`
}

// Clone returns a deep copy down to the elements.
func (p Presentation) Clone() Presentation {
	out := p
	out.Slides = make([]Slide, len(p.Slides))
	for i, sl := range p.Slides {
		out.Slides[i] = sl.Clone()
	}
	return out
}

// SlideIndex returns the position of the slide with the given id, or -1.
func (p Presentation) SlideIndex(id string) int {
	for i, sl := range p.Slides {
		if sl.ID == id {
			return i
		}
	}
	return -1
}

// Store is the full mapping of presentation id to presentation. It is the
// unit of remote persistence: every mutation ships the entire value back to
// the persistence service.
type Store map[string]Presentation

// Clone returns a deep copy of the store.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for id, p := range s {
		out[id] = p.Clone()
	}
	return out
}

// EmbedWatchURL converts a YouTube watch URL into its embeddable form.
// Anything it does not recognize passes through unchanged.
func EmbedWatchURL(watchURL string) string {
	u, err := url.Parse(watchURL)
	if err != nil {
		return watchURL
	}

	switch {
	case strings.HasSuffix(u.Host, "youtube.com") && u.Path == "/watch":
		if id := u.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case strings.HasSuffix(u.Host, "youtu.be"):
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	}

	return watchURL
}
