//go:build js && wasm

// The wasm build runs the diagram editor in the browser for offline and
// playground use: the same model, command log, and controller as the
// server rooms, driven directly from JavaScript.
package main

import (
	"syscall/js"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/editor"
	"github.com/scopemap/scopemap/backend-go/internal/geometry"
)

var ed *editor.Editor

func main() {
	ed = editor.New(diagram.New(geometry.Point{}), nil, nil)

	api := js.Global().Get("Object").New()

	// --- Document ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("newDocument", js.FuncOf(newDocument))
	api.Set("getDocument", js.FuncOf(getDocument))

	// --- Entity operations ---
	api.Set("addSwimlane", js.FuncOf(addSwimlane))
	api.Set("addOutcome", js.FuncOf(addOutcome))
	api.Set("connectOutcomes", js.FuncOf(connectOutcomes))
	api.Set("moveSwimlane", js.FuncOf(moveSwimlane))
	api.Set("moveOutcome", js.FuncOf(moveOutcome))
	api.Set("recolor", js.FuncOf(recolor))
	api.Set("rename", js.FuncOf(rename))
	api.Set("remove", js.FuncOf(remove))

	// --- Freehand blob drawing ---
	api.Set("beginBlob", js.FuncOf(beginBlob))
	api.Set("appendBlobPoint", js.FuncOf(appendBlobPoint))
	api.Set("finishBlob", js.FuncOf(finishBlob))
	api.Set("cancelBlob", js.FuncOf(cancelBlob))

	// --- History ---
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("canUndo", js.FuncOf(canUndo))
	api.Set("canRedo", js.FuncOf(canRedo))

	// --- Picking ---
	api.Set("closestSwimlane", js.FuncOf(closestSwimlane))
	api.Set("closestOutcome", js.FuncOf(closestOutcome))
	api.Set("blobsAt", js.FuncOf(blobsAt))
	api.Set("outcomesInBlob", js.FuncOf(outcomesInBlob))

	js.Global().Set("scopemapEditor", api)
	js.Global().Set("scopemapWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func ok(fields map[string]interface{}) interface{} {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["ok"] = true
	return js.ValueOf(fields)
}

// --- Document ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}
	d, err := diagram.UnmarshalJSONDocument([]byte(args[0].String()))
	if err != nil {
		return fail(err)
	}
	ed = editor.New(d, nil, nil)
	return ok(nil)
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	ed = editor.New(diagram.NewSampleDiagram(), nil, nil)
	return ok(nil)
}

func newDocument(this js.Value, args []js.Value) interface{} {
	ed = editor.New(diagram.New(geometry.Point{}), nil, nil)
	return ok(nil)
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := diagram.MarshalJSONDocument(ed.Diagram())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

// --- Entity operations ---

func addSwimlane(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "want label, angle[, length]"})
	}
	length := 0.0
	if len(args) > 2 {
		length = args[2].Float()
	}
	s, err := ed.AddSwimlane(args[0].String(), args[1].Float(), length)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]interface{}{"id": s.ID})
}

func addOutcome(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "want swimlaneId, distance, label"})
	}
	o, err := ed.AddOutcome(int64(args[0].Int()), args[1].Float(), args[2].String())
	if err != nil {
		return fail(err)
	}
	return ok(map[string]interface{}{"id": o.ID, "x": o.Position.X, "y": o.Position.Y})
}

func connectOutcomes(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf(map[string]interface{}{"error": "want x1, y1, x2, y2"})
	}
	from := geometry.Point{X: args[0].Float(), Y: args[1].Float()}
	to := geometry.Point{X: args[2].Float(), Y: args[3].Float()}
	b, err := ed.ConnectOutcomes(from, to)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]interface{}{"id": b.ID})
}

func moveSwimlane(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "want id, angle, length"})
	}
	if err := ed.MoveSwimlane(int64(args[0].Int()), args[1].Float(), args[2].Float()); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func moveOutcome(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "want id, distance"})
	}
	if err := ed.MoveOutcome(int64(args[0].Int()), args[1].Float()); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func recolor(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "want kind, id, color"})
	}
	c, err := diagram.ParseColor(args[2].String())
	if err != nil {
		return fail(err)
	}
	if err := ed.Recolor(diagram.EntityKind(args[0].String()), int64(args[1].Int()), c); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func rename(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "want kind, id, label"})
	}
	if err := ed.Rename(diagram.EntityKind(args[0].String()), int64(args[1].Int()), args[2].String()); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func remove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "want kind, id"})
	}
	if err := ed.Remove(diagram.EntityKind(args[0].String()), int64(args[1].Int())); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// --- Freehand blob drawing ---

func beginBlob(this js.Value, args []js.Value) interface{} {
	ed.BeginBlob()
	return ok(nil)
}

func appendBlobPoint(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "want x, y"})
	}
	if err := ed.AppendPoint(geometry.Point{X: args[0].Float(), Y: args[1].Float()}); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func finishBlob(this js.Value, args []js.Value) interface{} {
	label := ""
	if len(args) > 0 {
		label = args[0].String()
	}
	b, err := ed.FinishBlob(label)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]interface{}{"id": b.ID})
}

func cancelBlob(this js.Value, args []js.Value) interface{} {
	ed.CancelBlob()
	return ok(nil)
}

// --- History ---

func undo(this js.Value, args []js.Value) interface{} {
	if err := ed.Undo(); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func redo(this js.Value, args []js.Value) interface{} {
	if err := ed.Redo(); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Log().CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Log().CanRedo())
}

// --- Picking ---

func closestSwimlane(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(nil)
	}
	s, err := ed.ClosestSwimlane(geometry.Point{X: args[0].Float(), Y: args[1].Float()})
	if err != nil {
		return js.ValueOf(nil)
	}
	return js.ValueOf(map[string]interface{}{"id": s.ID, "label": s.Label})
}

func closestOutcome(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(nil)
	}
	o, err := ed.ClosestOutcome(geometry.Point{X: args[0].Float(), Y: args[1].Float()})
	if err != nil {
		return js.ValueOf(nil)
	}
	return js.ValueOf(map[string]interface{}{
		"id": o.ID, "label": o.Label, "x": o.Position.X, "y": o.Position.Y,
	})
}

func blobsAt(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf([]interface{}{})
	}
	ids := ed.Diagram().BlobsAt(int64(args[0].Int()))
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func outcomesInBlob(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf([]interface{}{})
	}
	ids, err := ed.OutcomesCovered(int64(args[0].Int()))
	if err != nil {
		return fail(err)
	}
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}
