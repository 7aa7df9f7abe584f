package models

// Movement is a single docketed entry in a case's procedural history, as
// rendered by the portal. Absent source elements yield empty strings.
type Movement struct {
	// DateTime is the text of the date cell, e.g. "12/03/2024".
	DateTime string `json:"data_hora"`

	// Description is the movement title plus any detail text.
	Description string `json:"descricao"`

	// Documents is the href of the linked document, relative to the portal.
	Documents string `json:"documentos"`
}
