package cgo

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/born-ml/modelir/internal/schema/fbs"
)

// Verify checks that buf is a structurally sound raw graph.
func Verify(buf []byte) error {
	return VerifyWith(fbs.New(buf))
}

// VerifyWith runs the raw graph walk with a caller-configured verifier.
func VerifyWith(v *fbs.Verifier) error {
	return fbs.Run(func() error {
		root, err := v.Root()
		if err != nil {
			return err
		}
		return verifyRawGraph(v, root)
	})
}

func verifyRawGraph(v *fbs.Verifier, g fbs.Table) error {
	if err := v.Required(g, graphHeader, "header"); err != nil {
		return err
	}
	if err := v.Table(g, graphHeader, func(h fbs.Table) error {
		return v.String(h, 0)
	}); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if err := v.Table(g, graphCore, func(c fbs.Table) error {
		return verifyCore(v, c)
	}); err != nil {
		return fmt.Errorf("core: %w", err)
	}
	if err := v.Table(g, graphParam, func(p fbs.Table) error {
		return v.TableVector(p, 0, func(_ int, e fbs.Table) error {
			return v.Table(e, 0, func(bi fbs.Table) error { return v.String(bi, 0) })
		})
	}); err != nil {
		return fmt.Errorf("param: %w", err)
	}
	for _, slot := range []int{graphPreCPUCore, graphPostCPUCore} {
		if err := v.TableVector(g, slot, func(_ int, m fbs.Table) error {
			return verifyMsg(v, m)
		}); err != nil {
			return fmt.Errorf("cpu core: %w", err)
		}
	}
	return nil
}

func verifyCore(v *fbs.Verifier, c fbs.Table) error {
	if err := v.TableVector(c, coreMsgs, func(_ int, m fbs.Table) error {
		return verifyMsg(v, m)
	}); err != nil {
		return fmt.Errorf("msgs: %w", err)
	}
	for _, slot := range []int{coreBuffers, coreScalars} {
		if err := v.TableVector(c, slot, func(_ int, r fbs.Table) error {
			return v.String(r, 0)
		}); err != nil {
			return err
		}
	}
	for _, slot := range []int{coreGraphInBuffers, coreGraphOutBuffers} {
		if _, err := v.Vector(c, slot, flatbuffers.SizeUint32); err != nil {
			return err
		}
	}
	return v.Table(c, coreTargetInfo, func(ti fbs.Table) error {
		for _, slot := range []int{tiDSP2018, tiDSP2019} {
			if err := v.Table(ti, slot, func(d fbs.Table) error {
				if err := v.Table(d, 0, func(bi fbs.Table) error { return v.String(bi, 0) }); err != nil {
					return err
				}
				return v.TableVector(d, 1, func(_ int, lib fbs.Table) error { return v.String(lib, 0) })
			}); err != nil {
				return fmt.Errorf("target info: %w", err)
			}
		}
		return nil
	})
}

func verifyMsg(v *fbs.Verifier, m fbs.Table) error {
	if err := v.Table(m, msgKernelInfo, nil); err != nil {
		return err
	}
	for _, slot := range []int{msgInBuffers, msgOutBuffers, msgUsrScalars} {
		if _, err := v.Vector(m, slot, flatbuffers.SizeUint32); err != nil {
			return err
		}
	}
	return nil
}
