//go:build windows

package process

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const wmClose = 0x0010

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procPostMessage = user32.NewProc("PostMessageW")

	// One callback for the life of the process; Windows caps how many can be
	// created.
	enumWindowsCallback = syscall.NewCallback(closeOwnedWindow)
)

type closeTarget struct {
	pid     uint32
	posted  int
	lastErr error
}

func closeOwnedWindow(hwnd windows.HWND, param uintptr) uintptr {
	target := (*closeTarget)(unsafe.Pointer(param))
	var owner uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &owner); err != nil {
		return 1
	}
	if owner != target.pid {
		return 1
	}
	if ret, _, err := procPostMessage.Call(uintptr(hwnd), wmClose, 0, 0); ret == 0 {
		target.lastErr = err
		return 1
	}
	target.posted++
	return 1
}

func (p *processInstance) RequestClose() error {
	if p.exited() {
		return nil
	}
	target := &closeTarget{pid: uint32(p.pid)}
	if err := windows.EnumWindows(enumWindowsCallback, unsafe.Pointer(target)); err != nil {
		return fmt.Errorf("enumerate windows of process %d: %w", p.pid, err)
	}
	if target.posted == 0 && target.lastErr != nil {
		return fmt.Errorf("post WM_CLOSE to process %d: %w", p.pid, target.lastErr)
	}
	return nil
}

func (p *processInstance) Kill() error {
	if p.exited() {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill process %d: %w", p.pid, err)
	}
	return nil
}
