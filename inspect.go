package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/aquasecurity/table"
	"github.com/spaghettifunk/dolas/engine"
	"github.com/spaghettifunk/dolas/engine/core"
	"github.com/spaghettifunk/dolas/engine/renderer/headless"
	"github.com/spaghettifunk/dolas/engine/renderer/metadata"
)

func inspectCommand(args []string, w io.Writer) error {
	fls := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fls.SetOutput(w)
	configPath := fls.String("config", "", "path to engine.toml")
	showRegistry := fls.Bool("registry", false, "also print every hashed name")
	if err := fls.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	cfg.Headless = true

	e, err := engine.New(cfg, headless.New(), nil)
	if err != nil {
		return err
	}
	defer e.Shutdown()
	if err := e.Initialize(); err != nil {
		return err
	}
	// one frame so the stats columns mean something
	if err := e.Tick(0); err != nil {
		return err
	}

	printManagers(w, e)
	printViews(w, e)
	printTextures(w, e)
	if *showRegistry {
		printRegistry(w, e.Registry())
	}
	return nil
}

func newTable(w io.Writer, title string, headers ...string) *table.Table {
	fmt.Fprintf(w, "\n%s\n", title)
	tbl := table.New(w)
	tbl.SetColumnMaxWidth(48)
	tbl.SetBorders(false)
	tbl.SetHeaders(headers...)
	return tbl
}

func printManagers(w io.Writer, e *engine.Engine) {
	sm := e.Systems()
	tbl := newTable(w, "Managers", "Manager", "Count")
	tbl.AddRow("textures", strconv.Itoa(sm.Textures.Len()))
	tbl.AddRow("meshes", strconv.Itoa(sm.Meshes.Len()))
	tbl.AddRow("materials", strconv.Itoa(sm.Materials.Len()))
	tbl.AddRow("entities", strconv.Itoa(sm.Entities.Len()))
	tbl.AddRow("scenes", strconv.Itoa(sm.Scenes.Len()))
	tbl.AddRow("cameras", strconv.Itoa(sm.Cameras.Len()))
	tbl.AddRow("resources", strconv.Itoa(sm.Resources.Len()))
	tbl.AddRow("pipelines", strconv.Itoa(sm.Pipelines.Len()))
	tbl.AddRow("views", strconv.Itoa(sm.Views.Len()))
	tbl.AddRow("assets", strconv.Itoa(e.Assets().Len()))
	tbl.Render()
}

func printViews(w io.Writer, e *engine.Engine) {
	reg := e.Registry()
	tbl := newTable(w, "Views", "View", "Priority", "Camera", "Pipeline", "Resource", "Scene", "Draws", "Skipped")
	for _, v := range e.Systems().Views.Ordered() {
		tbl.AddRow(v.Name, strconv.Itoa(v.Priority),
			reg.Resolve(v.CameraID), reg.Resolve(v.PipelineID), reg.Resolve(v.ResourceID), reg.Resolve(v.SceneID),
			strconv.Itoa(v.Stats.Draws), strconv.Itoa(v.Stats.TotalSkipped()))
	}
	tbl.Render()
}

func printTextures(w io.Writer, e *engine.Engine) {
	ts := e.Systems().Textures
	tbl := newTable(w, "Textures", "Name", "Size", "Format", "Usage", "Refs")
	ts.Each(func(t *metadata.Texture) {
		tbl.AddRow(t.Name, fmt.Sprintf("%dx%d", t.Width, t.Height), t.Format.String(), t.Usage.String(), strconv.Itoa(ts.Refs(t.ID)))
	})
	tbl.Render()
}

func printRegistry(w io.Writer, reg *core.HashRegistry) {
	tbl := newTable(w, "Hash registry", "ID", "Name")
	for _, entry := range reg.Entries() {
		tbl.AddRow(strconv.FormatUint(uint64(entry.ID), 10), entry.Name)
	}
	tbl.Render()
}
