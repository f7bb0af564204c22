package lbrynet

import (
	"errors"
	"fmt"
	"net"
)

// RPCError is an error reported by the daemon, either in the JSON-RPC
// error member or as a failing HTTP status.
type RPCError struct {
	Method  string
	Status  int
	Code    int
	Name    string
	Message string
}

func (e *RPCError) Error() string {
	if e == nil {
		return ""
	}
	prefix := "lbrynet"
	if e.Method != "" {
		prefix = "lbrynet " + e.Method
	}
	switch {
	case e.Name != "" && e.Message != "":
		return fmt.Sprintf("%s: %s, %s", prefix, e.Name, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("%s: http status %d", prefix, e.Status)
	default:
		return prefix + ": error"
	}
}

func newRPCError(method string, status int, obj *errorObject) *RPCError {
	return &RPCError{
		Method:  method,
		Status:  status,
		Code:    obj.Code,
		Name:    obj.Data.Name,
		Message: obj.Message,
	}
}

// IsUnavailable reports whether err means the daemon could not be reached.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
