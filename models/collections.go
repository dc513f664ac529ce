package models

// Collection names in the document store
const (
	CollectionClients       = "CLIENTES"
	CollectionEmployees     = "EMPLEADOS"
	CollectionItems         = "ARTICULOS"
	CollectionLoans         = "PRESTAMOS"
	CollectionNeighborhoods = "BARRIOS"
)

// Option is a label/value pair for selection widgets
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
