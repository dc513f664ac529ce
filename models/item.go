package models

// ItemState is the publication state of an item
type ItemState string

const (
	ItemStatePublished   ItemState = "Publicado"
	ItemStateUnpublished ItemState = "NoPublicado"
)

// Item is a piece of collateral, optionally with uploaded images
type Item struct {
	ID         string    `json:"id"`
	BarrioRef  *Ref      `json:"barrioRef" validate:"required"`
	Estado     ItemState `json:"estado" validate:"required,oneof=Publicado NoPublicado"`
	Precio     float64   `json:"precio" validate:"gte=0"`
	ImagenURLs []string  `json:"imagenURLs"`
}

func (i *Item) GetID() string { return i.ID }
func (i *Item) SetID(id string) { i.ID = id }

func (i *Item) GetImageURLs() []string { return i.ImagenURLs }
func (i *Item) SetImageURLs(urls []string) { i.ImagenURLs = urls }
