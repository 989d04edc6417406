package cgo

import "strconv"

// TargetType is the execution target assigned to a macro subgraph.
type TargetType uint8

// Targets.
const (
	TargetCPU TargetType = iota
	TargetVIP
	TargetORCA
	TargetGPU
)

var targetTypeNames = [...]string{"OFI_TARGET_CPU", "OFI_TARGET_VIP", "OFI_TARGET_ORCA", "OFI_TARGET_GPU"}

func (t TargetType) String() string {
	if int(t) < len(targetTypeNames) {
		return targetTypeNames[t]
	}
	return "TargetType(" + strconv.Itoa(int(t)) + ")"
}

// IsDSP reports whether t runs on the DSP.
func (t TargetType) IsDSP() bool {
	return t == TargetVIP || t == TargetORCA
}

// GraphType is the DSP target info layout.
type GraphType uint8

// DSP graph layouts.
const (
	GraphTypeNone GraphType = iota
	GraphTypeNN2018
	GraphTypeCVNN2019
)

func (g GraphType) String() string {
	switch g {
	case GraphTypeNone:
		return "OFI_GRAPH_TYPE_NONE"
	case GraphTypeNN2018:
		return "OFI_GRAPH_TYPE_NN2018"
	case GraphTypeCVNN2019:
		return "OFI_GRAPH_TYPE_CVNN2019"
	default:
		return "GraphType(" + strconv.Itoa(int(g)) + ")"
	}
}

// MemLoadType says where a parameter's initial contents come from.
type MemLoadType uint8

// Load types.
const (
	MemLoadNone MemLoadType = iota
	MemLoadFromCGO
	MemLoadFromUser
)

// kernelNames maps CPU kernel function ids to names. Empty slots are reserved.
var kernelNames = [...]string{
	0:  "NONE",
	1:  "DSP_GRAPH",
	2:  "ARGMAX",
	3:  "NORMALIZATION",
	4:  "",
	5:  "QUANTIZATION",
	6:  "DEQUANTIZATION",
	7:  "CFU_CONVERTER",
	8:  "CFU_INVERTER",
	9:  "",
	10: "SOFTMAX",
	11: "DETECTION",
	12: "CONCAT",
	13: "FLATTEN",
	14: "",
	15: "PAD",
	16: "SCALE",
	17: "RESIZE",
	18: "",
	19: "TRANSPOSE",
	20: "SIGMOID",
	21: "UNKNOWN",
}

// KernelName returns the name of a kernel function id. Reserved and out of
// range ids map to "UNKNOWN".
func KernelName(id int32) string {
	if id < 0 || int(id) >= len(kernelNames) || kernelNames[id] == "" {
		return "UNKNOWN"
	}
	return kernelNames[id]
}
