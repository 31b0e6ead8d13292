//go:build windows

package process_windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// EnableDebugPrivilege enables SeDebugPrivilege on the current process
// token. Opening another user's process requires it.
func EnableDebugPrivilege() error {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token); err != nil {
		return fmt.Errorf("OpenProcessToken: %w", err)
	}
	defer token.Close()

	name, err := windows.UTF16PtrFromString("SeDebugPrivilege")
	if err != nil {
		return err
	}

	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, name, &luid); err != nil {
		return fmt.Errorf("LookupPrivilegeValue: %w", err)
	}

	tp := windows.Tokenprivileges{
		PrivilegeCount: 1,
		Privileges: [1]windows.LUIDAndAttributes{
			{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED},
		},
	}
	if err := windows.AdjustTokenPrivileges(token, false, &tp, uint32(unsafe.Sizeof(tp)), nil, nil); err != nil {
		return fmt.Errorf("AdjustTokenPrivileges: %w", err)
	}

	return nil
}

// HasAdminPrivileges reports whether the current process token is elevated
func HasAdminPrivileges() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
