package server

import (
	"sync"

	"github.com/coder/websocket"
)

type ConnectionManager struct {
	connections map[string]*websocket.Conn // connectionID -> socket
	tokens      map[string]string          // token -> connectionID
	byConn      map[string]string          // connectionID -> token
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		tokens:      make(map[string]string),
		byConn:      make(map[string]string),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

// AddConnectionWithToken binds a connection to a session token and returns
// the connection id previously holding that token, if any. The caller is
// expected to close the old connection (connected elsewhere).
func (cm *ConnectionManager) AddConnectionWithToken(id string, conn *websocket.Conn, token string) string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[id] = conn
	old := cm.tokens[token]
	cm.tokens[token] = id
	cm.byConn[id] = token
	return old
}

func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if token, ok := cm.byConn[id]; ok && cm.tokens[token] == id {
		delete(cm.tokens, token)
	}
	delete(cm.byConn, id)
	delete(cm.connections, id)
}

func (cm *ConnectionManager) GetConnection(id string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[id]
}

func (cm *ConnectionManager) GetTokenByConnection(id string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.byConn[id]
}

func (cm *ConnectionManager) GetConnectionByToken(token string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.tokens[token]
}
