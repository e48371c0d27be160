//go:build windows

package overlay

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"screen-capper/src/geometry"
)

const (
	msgShow = 0x8000 + 1 + iota // WM_APP+1
	msgHide
	msgRender
	msgMode
	msgRelease
)

const (
	wdaExcludeFromCapture = 0x00000011
	ulwAlpha              = 0x00000002
	acSrcOver             = 0x00
	acSrcAlpha            = 0x01
	wmMouseActivate       = 0x0021
	maNoActivate          = 3
)

var (
	user32DLL                    = windows.NewLazySystemDLL("user32.dll")
	procSetWindowDisplayAffinity = user32DLL.NewProc("SetWindowDisplayAffinity")
	procUpdateLayeredWindow      = user32DLL.NewProc("UpdateLayeredWindow")
)

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

// The window procedure is a plain callback; it finds its surface here.
var (
	surfacesMu sync.Mutex
	surfaces   = map[win.HWND]*windowsSurface{}
)

type windowsSurface struct {
	hwnd     win.HWND
	events   chan PointerEvent
	excluded bool

	painter painter

	mu       sync.Mutex
	bounds   geometry.Rect
	mode     InputMode
	dragging bool
	released bool
	done     chan struct{}
}

// NewSurface creates the layered overlay window on a dedicated OS thread.
// It fails with ErrOverlayUnsupported when the window cannot be created.
func NewSurface() (Surface, error) {
	s := &windowsSurface{
		events: make(chan PointerEvent, 256),
		done:   make(chan struct{}),
	}
	ready := make(chan error, 1)
	go s.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return s, nil
}

func (s *windowsSurface) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	classNameStr := fmt.Sprintf("ScreenCapperOverlay_%d", time.Now().UnixNano())
	className := syscall.StringToUTF16Ptr(classNameStr)
	cursor := win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       cursor,
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		ready <- fmt.Errorf("%w: failed to register window class", ErrOverlayUnsupported)
		return
	}
	defer win.UnregisterClass(className)

	hwnd := win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_NOACTIVATE,
		className,
		syscall.StringToUTF16Ptr("screen-capper overlay"),
		win.WS_POPUP,
		0, 0, 1, 1,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		ready <- fmt.Errorf("%w: failed to create layered topmost window", ErrOverlayUnsupported)
		return
	}
	s.hwnd = hwnd
	surfacesMu.Lock()
	surfaces[hwnd] = s
	surfacesMu.Unlock()

	ret, _, _ := procSetWindowDisplayAffinity.Call(uintptr(hwnd), wdaExcludeFromCapture)
	s.excluded = ret != 0
	log.Printf("OVERLAY: window created, hwnd=%v, excluded from capture=%v", hwnd, s.excluded)
	ready <- nil

	var msg win.MSG
	for {
		r := win.GetMessage(&msg, 0, 0, 0)
		if r == 0 {
			log.Printf("OVERLAY: WM_QUIT received")
			break
		}
		if r == -1 {
			log.Printf("OVERLAY: GetMessage error")
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	surfacesMu.Lock()
	delete(surfaces, hwnd)
	surfacesMu.Unlock()
}

func (s *windowsSurface) Show(bounds geometry.Rect) error {
	if bounds.Empty() {
		return fmt.Errorf("overlay bounds %s are empty", bounds)
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return fmt.Errorf("%w: surface released", ErrOverlayUnsupported)
	}
	s.bounds = bounds
	s.mu.Unlock()
	win.SendMessage(s.hwnd, msgShow, 0, 0)
	return nil
}

func (s *windowsSurface) Hide() error {
	win.SendMessage(s.hwnd, msgHide, 0, 0)
	return nil
}

func (s *windowsSurface) SetInputMode(mode InputMode) error {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	win.SendMessage(s.hwnd, msgMode, 0, 0)
	return nil
}

// Render records f for the window thread, which composes it when it next
// paints. Frames that arrive faster than they are painted are coalesced.
func (s *windowsSurface) Render(f Frame) error {
	if s.painter.store(f) {
		win.PostMessage(s.hwnd, msgRender, 0, 0)
	}
	return nil
}

func (s *windowsSurface) Events() <-chan PointerEvent { return s.events }

func (s *windowsSurface) ExcludedFromCapture() bool { return s.excluded }

func (s *windowsSurface) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	s.mu.Unlock()
	win.PostMessage(s.hwnd, msgRelease, 0, 0)
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		log.Printf("OVERLAY: window thread did not exit")
	}
	return nil
}

func (s *windowsSurface) emit(ev PointerEvent) {
	select {
	case s.events <- ev:
	default:
		if ev.Kind != PointerMove {
			log.Printf("OVERLAY: pointer queue full, dropped event %d", ev.Kind)
		}
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	surfacesMu.Lock()
	s := surfaces[hwnd]
	surfacesMu.Unlock()
	if s == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case msgShow:
		s.mu.Lock()
		b := s.bounds
		s.mu.Unlock()
		win.SetWindowPos(hwnd, win.HWND_TOPMOST, int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height),
			win.SWP_NOACTIVATE|win.SWP_SHOWWINDOW)
		s.paint()
		return 0

	case msgHide:
		win.ShowWindow(hwnd, win.SW_HIDE)
		return 0

	case msgRender:
		s.paint()
		return 0

	case msgMode:
		s.mu.Lock()
		mode := s.mode
		dragging := s.dragging
		s.dragging = false
		s.mu.Unlock()
		style := win.GetWindowLong(hwnd, win.GWL_EXSTYLE)
		if mode == PassThrough {
			style |= win.WS_EX_TRANSPARENT
		} else {
			style &^= win.WS_EX_TRANSPARENT
		}
		win.SetWindowLong(hwnd, win.GWL_EXSTYLE, style)
		if dragging {
			win.ReleaseCapture()
		}
		return 0

	case msgRelease:
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		s.mu.Lock()
		s.dragging = true
		s.mu.Unlock()
		s.emit(PointerEvent{Kind: PointerDown, Pos: pointFromLParam(lParam)})
		return 0

	case win.WM_MOUSEMOVE:
		s.mu.Lock()
		dragging := s.dragging
		s.mu.Unlock()
		if dragging {
			s.emit(PointerEvent{Kind: PointerMove, Pos: pointFromLParam(lParam)})
		}
		return 0

	case win.WM_LBUTTONUP:
		s.mu.Lock()
		dragging := s.dragging
		s.dragging = false
		s.mu.Unlock()
		if dragging {
			win.ReleaseCapture()
			s.emit(PointerEvent{Kind: PointerUp, Pos: pointFromLParam(lParam)})
		}
		return 0

	case wmMouseActivate:
		return maNoActivate

	case win.WM_DESTROY:
		log.Printf("OVERLAY: WM_DESTROY received")
		win.PostQuitMessage(0)
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// pointFromLParam decodes client coordinates; they are signed when the
// pointer is captured outside the window.
func pointFromLParam(lParam uintptr) geometry.Point {
	x := int16(win.LOWORD(uint32(lParam)))
	y := int16(win.HIWORD(uint32(lParam)))
	return geometry.Point{X: int(x), Y: int(y)}
}

// paint composes the latest frame and pushes it through UpdateLayeredWindow
// as a premultiplied BGRA DIB.
func (s *windowsSurface) paint() {
	s.mu.Lock()
	b := s.bounds
	s.mu.Unlock()
	img, f, ok := s.painter.take()
	if !ok {
		return
	}
	if f.Bounds != b {
		log.Printf("OVERLAY: stale frame for %s, bounds now %s, skipped", f.Bounds, b)
		return
	}
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	screenDC := win.GetDC(0)
	defer win.ReleaseDC(0, screenDC)
	memDC := win.CreateCompatibleDC(screenDC)
	defer win.DeleteDC(memDC)

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		log.Printf("OVERLAY: CreateDIBSection failed")
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))
	old := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, old)

	dst := unsafe.Slice((*byte)(pBits), width*height*4)
	src := img.Pix
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}

	ptDst := win.POINT{X: int32(b.X), Y: int32(b.Y)}
	size := win.SIZE{CX: int32(width), CY: int32(height)}
	ptSrc := win.POINT{}
	blend := blendFunction{BlendOp: acSrcOver, SourceConstantAlpha: 255, AlphaFormat: acSrcAlpha}
	r, _, err := procUpdateLayeredWindow.Call(
		uintptr(s.hwnd),
		uintptr(screenDC),
		uintptr(unsafe.Pointer(&ptDst)),
		uintptr(unsafe.Pointer(&size)),
		uintptr(memDC),
		uintptr(unsafe.Pointer(&ptSrc)),
		0,
		uintptr(unsafe.Pointer(&blend)),
		ulwAlpha,
	)
	if r == 0 {
		log.Printf("OVERLAY: UpdateLayeredWindow failed: %v", err)
	}
}
