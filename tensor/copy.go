package tensor

import (
	"unsafe"

	hipblaslt "github.com/chiranjeevipattigidi/hipBLASLt"
)

// Copy transfers the logical contents of a strided tensor from src to
// dst, issuing one asynchronous device copy per plan segment. Both
// buffers must share the layout described by d; segment offsets apply
// to source and destination alike.
func Copy(dev hipblaslt.Device, dst, src unsafe.Pointer, d Descriptor,
	kind hipblaslt.CopyKind, stream hipblaslt.Stream) error {

	for _, seg := range Plan(d) {
		dstBytes := unsafe.Add(dst, seg.Offset)
		srcBytes := unsafe.Add(src, seg.Offset)
		if err := dev.CopyAsync(dstBytes, srcBytes, seg.Length, kind, stream); err != nil {
			return err
		}
	}
	return nil
}

// CopyBuffer transfers a flat byte range in a single asynchronous copy.
func CopyBuffer(dev hipblaslt.Device, dst, src unsafe.Pointer, bytes int64,
	kind hipblaslt.CopyKind, stream hipblaslt.Stream) error {

	return dev.CopyAsync(dst, src, bytes, kind, stream)
}
