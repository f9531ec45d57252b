// Package portfinder 在端口范围内查找可用端口，并把结果写入端口文件供客户端发现
package portfinder

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// ErrNoFreePort 范围内没有可用端口
var ErrNoFreePort = errors.New("no free port in range")

// portFile 端口文件内容
type portFile struct {
	Port int `json:"port"`
}

// Listen 依次尝试 start..end，返回第一个成功监听的端口
func Listen(host string, start, end int) (net.Listener, int, error) {
	if start <= 0 || end < start || end > 65535 {
		return nil, 0, fmt.Errorf("invalid port range %d-%d", start, end)
	}
	for port := start; port <= end; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return ln, port, nil
		}
	}
	return nil, 0, fmt.Errorf("%w %d-%d", ErrNoFreePort, start, end)
}

// Save 写入端口文件
func Save(path string, port int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(portFile{Port: port})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load 读取端口文件
func Load(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pf portFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return 0, fmt.Errorf("parse port file %s: %w", path, err)
	}
	if pf.Port <= 0 || pf.Port > 65535 {
		return 0, fmt.Errorf("port file %s has invalid port %d", path, pf.Port)
	}
	return pf.Port, nil
}
