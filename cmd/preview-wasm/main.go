//go:build js && wasm

// Preview client
//
// Binds the preview controller to the page: file picker, drag & drop zone,
// image/video preview, simulate button, result area and spinner. Built with
// GOOS=js GOARCH=wasm and loaded by webapp/app.js.
package main

import (
	"errors"
	"fmt"
	"html"
	"syscall/js"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/preview"
)

type elements struct {
	fileInput   js.Value
	dropArea    js.Value
	image       js.Value
	video       js.Value
	wrapper     js.Value
	simulateBtn js.Value
	result      js.Value
	spinner     js.Value
}

func lookup(doc js.Value) (*elements, error) {
	get := func(id string) (js.Value, error) {
		v := doc.Call("getElementById", id)
		if v.IsNull() || v.IsUndefined() {
			return js.Null(), fmt.Errorf("%w: #%s", preview.ErrMissingElements, id)
		}
		return v, nil
	}

	var e elements
	for _, f := range []struct {
		id  string
		dst *js.Value
	}{
		{"file-input", &e.fileInput},
		{"drop-area", &e.dropArea},
		{"preview", &e.image},
		{"preview-video", &e.video},
		{"preview-wrapper", &e.wrapper},
		{"simulate-btn", &e.simulateBtn},
		{"result", &e.result},
		{"spinner", &e.spinner},
	} {
		v, err := get(f.id)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return &e, nil
}

// domView renders controller state into the page.
type domView struct {
	el *elements
}

func (v *domView) Alert(msg string) {
	js.Global().Call("alert", msg)
}

func (v *domView) ShowPreview(p preview.Preview) {
	show := func(el js.Value, on bool) {
		el.Get("classList").Call("toggle", "hidden", !on)
	}

	switch p.Kind {
	case preview.KindImage:
		v.el.video.Call("pause")
		v.el.video.Call("removeAttribute", "src")
		v.el.image.Set("src", p.Source)
		v.el.image.Set("alt", p.Name)
		show(v.el.video, false)
		show(v.el.image, true)
	case preview.KindVideo:
		v.el.image.Call("removeAttribute", "src")
		v.el.video.Set("src", p.Source)
		show(v.el.image, false)
		show(v.el.video, true)
	}
	v.el.wrapper.Get("classList").Call("add", "has-image")
}

func (v *domView) RenderResult(r preview.Result) {
	switch r.Phase {
	case preview.PhaseIdle:
		v.el.result.Set("innerHTML", "")
	case preview.PhaseRunning:
		v.el.result.Set("innerHTML", "<p>"+html.EscapeString(r.Message())+"</p>")
	case preview.PhaseDone:
		badge := "real"
		if r.Label == preview.LabelDeepfake {
			badge = "deep"
		}
		v.el.result.Set("innerHTML", fmt.Sprintf(
			`<p>%s</p><p class="badge %s">%s</p><p>Score: %s</p>`,
			html.EscapeString(r.Message()), badge, r.Label, r.ScoreText()))
	}
}

func (v *domView) SetBusy(busy bool) {
	v.el.spinner.Get("classList").Call("toggle", "hidden", !busy)
	v.el.spinner.Call("setAttribute", "aria-hidden", fmt.Sprint(!busy))
}

func (v *domView) SetDropHighlight(on bool) {
	v.el.dropArea.Get("classList").Call("toggle", "dragover", on)
}

// blobURLs allocates object URLs for video previews.
type blobURLs struct{}

func (blobURLs) Create(f preview.File) (url string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("createObjectURL: %v", r)
		}
	}()
	buf := js.Global().Get("Uint8Array").New(len(f.Data))
	js.CopyBytesToJS(buf, f.Data)
	parts := js.Global().Get("Array").New(buf)
	opts := js.Global().Get("Object").New()
	opts.Set("type", f.Type)
	blob := js.Global().Get("Blob").New(parts, opts)
	return js.Global().Get("URL").Call("createObjectURL", blob).String(), nil
}

func (blobURLs) Revoke(url string) {
	js.Global().Get("URL").Call("revokeObjectURL", url)
}

type jsEvent struct {
	v js.Value
}

func (e jsEvent) PreventDefault() {
	e.v.Call("preventDefault")
}

// readFiles copies the first file of a FileList into Go memory and hands it
// to done, or calls fail if the browser cannot read it. The read is
// asynchronous.
func readFiles(list js.Value, done func([]preview.File), failed func()) {
	if list.IsUndefined() || list.IsNull() || list.Get("length").Int() == 0 {
		done(nil)
		return
	}
	file := list.Index(0)

	var then, fail js.Func
	release := func() {
		then.Release()
		fail.Release()
	}
	then = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		arr := js.Global().Get("Uint8Array").New(args[0])
		data := make([]byte, arr.Get("length").Int())
		js.CopyBytesToGo(data, arr)
		done([]preview.File{{
			Name: file.Get("name").String(),
			Type: file.Get("type").String(),
			Data: data,
		}})
		return nil
	})
	fail = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer release()
		consoleError("read file failed:", args[0])
		failed()
		return nil
	})
	file.Call("arrayBuffer").Call("then", then).Call("catch", fail)
}

type fileDrop struct {
	jsEvent
	files []preview.File
}

func (d fileDrop) Files() []preview.File { return d.files }

func consoleError(args ...any) {
	js.Global().Get("console").Call("error", args...)
}

// report logs failures the user was not already alerted about.
func report(err error) {
	var verr *preview.ValidationError
	if err == nil || errors.As(err, &verr) {
		return
	}
	consoleError("preview:", err.Error())
}

func main() {
	el, err := lookup(js.Global().Get("document"))
	if err != nil {
		consoleError("preview: initialisation aborted:", err.Error())
		return
	}

	ctrl, err := preview.New(&domView{el: el}, blobURLs{})
	if err != nil {
		consoleError("preview:", err.Error())
		return
	}

	on := func(target js.Value, event string, fn func(ev js.Value)) {
		target.Call("addEventListener", event, js.FuncOf(func(this js.Value, args []js.Value) any {
			fn(args[0])
			return nil
		}))
	}

	on(el.fileInput, "change", func(ev js.Value) {
		load := ctrl.BeginLoad()
		readFiles(ev.Get("target").Get("files"), func(files []preview.File) {
			report(load.Pick(files))
		}, load.Fail)
	})
	on(el.dropArea, "dragover", func(ev js.Value) {
		ctrl.DragOver(jsEvent{ev})
	})
	on(el.dropArea, "dragleave", func(js.Value) {
		ctrl.DragLeave()
	})
	on(el.dropArea, "drop", func(ev js.Value) {
		// preventDefault must run synchronously inside the handler.
		ev.Call("preventDefault")
		ctrl.DragLeave()
		files := js.Undefined()
		if dt := ev.Get("dataTransfer"); !dt.IsUndefined() && !dt.IsNull() {
			files = dt.Get("files")
		}
		load := ctrl.BeginLoad()
		readFiles(files, func(files []preview.File) {
			report(load.Drop(fileDrop{jsEvent: jsEvent{ev}, files: files}))
		}, load.Fail)
	})
	on(el.simulateBtn, "click", func(js.Value) {
		report(ctrl.Simulate())
	})

	select {}
}
