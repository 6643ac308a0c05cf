package grpc

import (
	"net"
	"strconv"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(p)
	return host, port, err
}

func nopLogger() logging.Logger { return logging.NewNopLogger() }

//Personal.AI order the ending
