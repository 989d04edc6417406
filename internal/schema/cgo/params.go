package cgo

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Parameter errors.
var (
	ErrNoTargetInfo     = errors.New("no DSP target info in graph")
	ErrLegacyTargetInfo = errors.New("DSP target info is not CVNN2019")
)

// Parameter is one entry of the side parameter list. Entry 0 is always the
// DSP graph binary; entry i+1 describes ParamList[i].
type Parameter struct {
	Index int32
	Name  string
	// Offset is the blob offset in the model file.
	Offset uint32
	// Size is 0 when no buffer is sent for this parameter.
	Size         uint32
	LoadFromFile bool
}

// ParseParameters verifies buf and lists the blobs a loader must supply
// alongside the graph. Parameters loaded from the model file, per-session
// user scalars and TEMP scratch buffers keep their size; everything else is
// listed with size 0.
func ParseParameters(buf []byte) ([]Parameter, error) {
	if err := Verify(buf); err != nil {
		return nil, fmt.Errorf("raw graph is not verified: %w", err)
	}
	g := GetRootAsRawGraph(buf)
	core, ok := g.Core()
	if !ok {
		return nil, ErrNoTargetInfo
	}
	ti, ok := core.TargetInfo()
	if !ok {
		return nil, ErrNoTargetInfo
	}
	if ti.Type() != GraphTypeCVNN2019 {
		return nil, fmt.Errorf("%w: %s", ErrLegacyTargetInfo, ti.Type())
	}
	dsp, ok := ti.DSP2019()
	if !ok {
		return nil, ErrNoTargetInfo
	}
	graph, ok := dsp.GraphInfo()
	if !ok {
		return nil, ErrNoTargetInfo
	}

	params := []Parameter{{
		Index:        0,
		Name:         graph.Name(),
		Offset:       graph.Offset(),
		Size:         graph.Size(),
		LoadFromFile: true,
	}}

	pool, ok := g.Param()
	if !ok {
		return params, nil
	}
	for i := 0; i < pool.ParamListLength(); i++ {
		e := pool.ParamList(i)
		info, ok := e.BufInfo()
		if !ok {
			return nil, fmt.Errorf("param %d has no buffer info", i)
		}
		p := Parameter{Index: int32(i), Name: info.Name(), Offset: info.Offset()}
		switch {
		case info.LoadDefault() == MemLoadFromCGO:
			p.Size = info.Size()
			p.LoadFromFile = true
		case e.IsUserDefined() && e.IsScalar() && e.IsAllocateEverySession():
			p.Size = info.Size()
		case strings.HasPrefix(info.Name(), "TEMP"):
			p.Size = info.Size()
		}
		params = append(params, p)
	}

	for _, p := range params {
		slog.Debug("cgo parameter", "index", p.Index, "name", p.Name, "offset", p.Offset,
			"size", p.Size, "loaded", p.LoadFromFile)
	}
	return params, nil
}
