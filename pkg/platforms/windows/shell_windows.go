//go:build windows

// Desktop App
// Copyright (c) 2026 The Desktop App Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Desktop App.
//
// Desktop App is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Desktop App is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Desktop App.  If not, see <http://www.gnu.org/licenses/>.

package windows

import (
	"errors"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/desktop-app/desktop-app/pkg/platforms"
	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

const (
	sFalse = 0x00000001

	gpsReadWrite = 0x00000002

	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
	shcnfFlush        = 0x1000

	// PKEY_AppUserModel_ID
	appUserModelIDFmtID = "{9F4C2855-9F79-4B39-A8D0-E1D42DE1D5F3}"
	appUserModelIDPID   = 5
	iidIPropertyStore   = "{886D8EEB-8CF2-4446-8D02-CDBA1DBDCF99}"
)

var (
	shell32 = windows.NewLazySystemDLL("shell32.dll")

	procSHGetPropertyStoreFromParsingName       = shell32.NewProc("SHGetPropertyStoreFromParsingName")
	procSetCurrentProcessExplicitAppUserModelID = shell32.NewProc("SetCurrentProcessExplicitAppUserModelID")
	procSHChangeNotify                          = shell32.NewProc("SHChangeNotify")
)

type propertyKey struct {
	fmtID ole.GUID
	pid   uint32
}

type propVariant struct {
	vt  ole.VT
	_   [3]uint16
	val uintptr
	_   uintptr
}

type iPropertyStoreVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
	GetCount       uintptr
	GetAt          uintptr
	GetValue       uintptr
	SetValue       uintptr
	Commit         uintptr
}

type iPropertyStore struct {
	vtbl *iPropertyStoreVtbl
}

func hresult(hr uintptr) error {
	if hr != 0 {
		return ole.NewError(hr)
	}
	return nil
}

type comShell struct{}

// withCOM runs fn on a locked OS thread with COM initialised for a
// single-threaded apartment, which WScript.Shell requires.
func withCOM(fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			return fmt.Errorf("failed to initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	return fn()
}

func withShortcut(path string, fn func(lnk *ole.IDispatch) error) error {
	return withCOM(func() error {
		unknown, err := oleutil.CreateObject("WScript.Shell")
		if err != nil {
			return fmt.Errorf("failed to create WScript.Shell: %w", err)
		}
		defer unknown.Release()

		wsh, err := unknown.QueryInterface(ole.IID_IDispatch)
		if err != nil {
			return fmt.Errorf("failed to query WScript.Shell: %w", err)
		}
		defer wsh.Release()

		lnkRaw, err := oleutil.CallMethod(wsh, "CreateShortcut", path)
		if err != nil {
			return fmt.Errorf("CreateShortcut failed: %w", err)
		}
		lnk := lnkRaw.ToIDispatch()
		defer lnk.Release()

		return fn(lnk)
	})
}

func (comShell) ProgramsDir() (string, error) {
	dir, err := windows.KnownFolderPath(windows.FOLDERID_Programs, windows.KF_FLAG_DEFAULT)
	if err != nil {
		return "", fmt.Errorf("failed to get Programs folder: %w", err)
	}
	return dir, nil
}

func (comShell) CreateShortcut(s platforms.Shortcut) error {
	err := withShortcut(s.Path, func(lnk *ole.IDispatch) error {
		props := []struct {
			name  string
			value string
		}{
			{"TargetPath", s.Target},
			{"Arguments", s.Arguments},
			{"WorkingDirectory", s.WorkingDirectory},
			{"IconLocation", s.Icon},
			{"Description", s.DisplayName},
		}
		for _, prop := range props {
			if prop.value == "" {
				continue
			}
			if _, err := oleutil.PutProperty(lnk, prop.name, prop.value); err != nil {
				return fmt.Errorf("failed to set %s: %w", prop.name, err)
			}
		}
		if _, err := oleutil.CallMethod(lnk, "Save"); err != nil {
			return fmt.Errorf("failed to save shortcut: %w", err)
		}
		return nil
	})
	if err != nil || s.AppID == "" {
		return err
	}
	return withCOM(func() error {
		return setShortcutAppID(s.Path, s.AppID)
	})
}

func (comShell) ReadShortcut(path string) (platforms.Shortcut, error) {
	s := platforms.Shortcut{Path: path}
	err := withShortcut(path, func(lnk *ole.IDispatch) error {
		fields := []struct {
			dst  *string
			name string
		}{
			{&s.Target, "TargetPath"},
			{&s.Arguments, "Arguments"},
			{&s.WorkingDirectory, "WorkingDirectory"},
			{&s.Icon, "IconLocation"},
			{&s.DisplayName, "Description"},
		}
		for _, f := range fields {
			v, err := oleutil.GetProperty(lnk, f.name)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", f.name, err)
			}
			*f.dst = v.ToString()
			_ = v.Clear()
		}
		return nil
	})
	return s, err
}

// setShortcutAppID stamps PKEY_AppUserModel_ID on a saved shortcut through
// its property store. COM must already be initialised.
func setShortcutAppID(path, appID string) error {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("invalid shortcut path: %w", err)
	}
	idPtr, err := windows.UTF16PtrFromString(appID)
	if err != nil {
		return fmt.Errorf("invalid appid: %w", err)
	}

	var store *iPropertyStore
	hr, _, _ := procSHGetPropertyStoreFromParsingName.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		0,
		gpsReadWrite,
		uintptr(unsafe.Pointer(ole.NewGUID(iidIPropertyStore))),
		uintptr(unsafe.Pointer(&store)),
	)
	if err := hresult(hr); err != nil {
		return fmt.Errorf("SHGetPropertyStoreFromParsingName failed: %w", err)
	}
	defer func() {
		_, _, _ = syscall.SyscallN(store.vtbl.Release, uintptr(unsafe.Pointer(store)))
	}()

	key := propertyKey{fmtID: *ole.NewGUID(appUserModelIDFmtID), pid: appUserModelIDPID}
	value := propVariant{vt: ole.VT_LPWSTR, val: uintptr(unsafe.Pointer(idPtr))}

	hr, _, _ = syscall.SyscallN(store.vtbl.SetValue,
		uintptr(unsafe.Pointer(store)),
		uintptr(unsafe.Pointer(&key)),
		uintptr(unsafe.Pointer(&value)),
	)
	runtime.KeepAlive(idPtr)
	if err := hresult(hr); err != nil {
		return fmt.Errorf("IPropertyStore.SetValue failed: %w", err)
	}

	hr, _, _ = syscall.SyscallN(store.vtbl.Commit, uintptr(unsafe.Pointer(store)))
	if err := hresult(hr); err != nil {
		return fmt.Errorf("IPropertyStore.Commit failed: %w", err)
	}
	return nil
}

func (comShell) SetAppUserModelID(appID string) error {
	idPtr, err := windows.UTF16PtrFromString(appID)
	if err != nil {
		return fmt.Errorf("invalid appid: %w", err)
	}
	hr, _, _ := procSetCurrentProcessExplicitAppUserModelID.Call(uintptr(unsafe.Pointer(idPtr)))
	return hresult(hr)
}

func (comShell) NotifyAssocChanged() error {
	if err := procSHChangeNotify.Find(); err != nil {
		return fmt.Errorf("SHChangeNotify unavailable: %w", err)
	}
	_, _, _ = procSHChangeNotify.Call(shcneAssocChanged, shcnfIDList|shcnfFlush, 0, 0)
	return nil
}
