// Package document defines the scene file: everything needed to reopen an
// edited haplotype network exactly as it was left.
//
// A [Document] captures node positions, label placements, groups and their
// colors, node sets, per-edge styles and the scene settings. The selection
// and the undo history are not persisted. Loading a document restores
// positions verbatim; no relaxation runs.
//
//	doc := document.New(ctrl, "cytb")
//	if err := document.Save(doc, "cytb.scene.json"); err != nil {
//	    return err
//	}
//
//	doc, err := document.Load("cytb.scene.json")
//	ctrl, err := doc.Open()
//
// Documents carry json and bson tags so the same value is written to files
// and to the MongoDB store.
package document
