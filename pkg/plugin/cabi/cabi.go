package cabi

// #cgo CFLAGS: -I../../../include
// #include "vroutput.h"
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/justyntemme/vroutput/pkg/vr"
)

func init() {
	if got, want := unsafe.Sizeof(rawView{}), uintptr(C.sizeof_vrout_view); got != want {
		panic(fmt.Sprintf("cabi: rawView is %d bytes, vrout_view is %d", got, want))
	}
}

//export GoInit
func GoInit(window C.uintptr_t, argc C.int32_t, argv **C.char) (ok C.bool) {
	defer recoverPanic("GoInit")
	return C.bool(initialize(vr.WindowID(window), goStrings(argc, argv)))
}

//export GoExit
func GoExit(window C.uintptr_t) {
	defer recoverPanic("GoExit")
	exit(vr.WindowID(window))
}

//export GoOutput
func GoOutput(window C.uintptr_t, ctx *C.vrout_render_context, textures *C.uint32_t) {
	defer recoverPanic("GoOutput")

	if ctx == nil {
		output(vr.WindowID(window), nil, nil)
		return
	}

	n := int(ctx.view_count)
	var views []rawView
	var raw []uint32
	if n > 0 && ctx.views != nil {
		views = unsafe.Slice((*rawView)(unsafe.Pointer(ctx.views)), n)
	}
	if n > 0 && textures != nil {
		raw = unsafe.Slice((*uint32)(unsafe.Pointer(textures)), n)
	}

	pc := newContext(vr.WindowID(window), rawContext{
		Process: int64(ctx.process_id),
		Width:   int32(ctx.window_width),
		Height:  int32(ctx.window_height),
	}, views)
	output(vr.WindowID(window), pc, copyTextures(raw))
}

func goStrings(argc C.int32_t, argv **C.char) []string {
	if argc <= 0 || argv == nil {
		return nil
	}
	raw := unsafe.Slice(argv, int(argc))
	args := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != nil {
			args = append(args, C.GoString(s))
		}
	}
	return args
}
