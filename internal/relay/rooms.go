package relay

import (
	"sort"
	"sync"

	"DeepHabitat/internal/shared/transport/ws"
)

// Rooms 是 topic -> 订阅连接 的登记表。一条连接只属于一个 topic，
// 连接关闭后自动解绑，最后一个订阅者离开时房间被移除。
type Rooms struct {
	sync.RWMutex
	topics     map[string]map[string]ws.WSConn
	conn2topic map[string]string
	watched    map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		topics:     make(map[string]map[string]ws.WSConn),
		conn2topic: make(map[string]string),
		watched:    make(map[string]struct{}),
	}
}

// Subscribe 把连接登记到 topic。连接已属于其他 topic 时返回 false。
func (r *Rooms) Subscribe(topic string, conn ws.WSConn) bool {
	if conn == nil || topic == "" {
		return false
	}
	r.Lock()
	defer r.Unlock()

	if bound, ok := r.conn2topic[conn.ID()]; ok {
		return bound == topic
	}

	// 为每条连接只启动一次 watcher：连接关闭后自动解绑，避免登记表逐步膨胀
	if _, ok := r.watched[conn.ID()]; !ok {
		r.watched[conn.ID()] = struct{}{}
		go r.watchConnDone(conn)
	}

	room := r.topics[topic]
	if room == nil {
		room = make(map[string]ws.WSConn)
		r.topics[topic] = room
	}
	room[conn.ID()] = conn
	r.conn2topic[conn.ID()] = topic
	return true
}

func (r *Rooms) watchConnDone(conn ws.WSConn) {
	<-conn.Done()
	r.Unbind(conn)
}

func (r *Rooms) Unbind(conn ws.WSConn) {
	r.Lock()
	defer r.Unlock()
	id := conn.ID()
	delete(r.watched, id)
	topic, ok := r.conn2topic[id]
	if !ok {
		return
	}
	delete(r.conn2topic, id)
	room := r.topics[topic]
	delete(room, id)
	if len(room) == 0 {
		delete(r.topics, topic)
	}
}

// TopicOf 返回连接已订阅的 topic。
func (r *Rooms) TopicOf(conn ws.WSConn) (string, bool) {
	r.RLock()
	defer r.RUnlock()
	t, ok := r.conn2topic[conn.ID()]
	return t, ok
}

// Broadcast 把帧推给同 topic 的其他订阅者，不回显发送者。
// 返回成功入队与因队列满被丢弃的连接 id。
func (r *Rooms) Broadcast(topic string, from ws.WSConn, frame []byte) (delivered int, dropped []string) {
	r.RLock()
	targets := make([]ws.WSConn, 0, len(r.topics[topic]))
	for id, c := range r.topics[topic] {
		if from != nil && id == from.ID() {
			continue
		}
		targets = append(targets, c)
	}
	r.RUnlock()

	for _, c := range targets {
		if c.Push(frame) {
			delivered++
		} else {
			dropped = append(dropped, c.ID())
		}
	}
	sort.Strings(dropped)
	return delivered, dropped
}

// Counts 返回每个 topic 的订阅者数量。
func (r *Rooms) Counts() map[string]int {
	r.RLock()
	defer r.RUnlock()
	out := make(map[string]int, len(r.topics))
	for t, room := range r.topics {
		out[t] = len(room)
	}
	return out
}
