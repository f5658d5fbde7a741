package gate

import (
	"context"
	"sync"

	"github.com/fixkme/evloop/clock"
	"github.com/fixkme/evloop/mlog"
	utime "github.com/fixkme/evloop/util/time"
	"github.com/panjf2000/gnet/v2"
	"github.com/rs/xid"
)

type ServerOptions struct {
	gnet.Options
	Addr          string //"tcp://127.0.0.1:8080"
	IdleTimeoutMs int64  //连接空闲超时 毫秒
	Clock         *clock.Clock
	// OnTraffic 处理收到的数据并返回要回写的内容, 默认echo
	OnTraffic func(conn *Conn, data []byte) []byte
}

// Server 带空闲超时踢除的tcp网关
// 每个连接持有一个clock定时器, 有流量就改期, 到期就断开
type Server struct {
	gnet.BuiltinEventEngine
	gnet.Engine
	opt    *ServerOptions
	quit   chan struct{}
	expire chan *clock.Promise

	mu    sync.Mutex
	conns map[string]*Conn // session -> conn
}

type Conn struct {
	c       gnet.Conn
	session string // xid, 用于日志和定时器关联
	timerId int64
}

func (conn *Conn) Session() string {
	return conn.session
}

func NewServer(opt *ServerOptions) *Server {
	if opt.OnTraffic == nil {
		opt.OnTraffic = func(conn *Conn, data []byte) []byte {
			return data
		}
	}
	return &Server{
		opt:    opt,
		quit:   make(chan struct{}),
		expire: make(chan *clock.Promise, 1024),
		conns:  make(map[string]*Conn),
	}
}

func (s *Server) Run() error {
	go s.reapLoop()
	if err := gnet.Run(s, s.opt.Addr, gnet.WithOptions(s.opt.Options)); err != nil {
		return err
	}
	return nil
}

func (s *Server) Shutdown() {
	close(s.quit)
	if err := s.Engine.Stop(context.Background()); err != nil {
		mlog.Errorf("gate stop error: %v", err)
	}
}

// 在gnet.Run协程里被调用
func (s *Server) OnBoot(eng gnet.Engine) (action gnet.Action) {
	s.Engine = eng
	mlog.Infof("gate listening on %s, idle timeout %dms", s.opt.Addr, s.opt.IdleTimeoutMs)
	return
}

func (s *Server) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	conn := &Conn{
		c:       c,
		session: xid.New().String(),
	}
	c.SetContext(conn)
	id, err := s.opt.Clock.NewTimer(utime.NowMs()+s.opt.IdleTimeoutMs, conn.session, s.expire, nil)
	if err != nil {
		mlog.Errorf("gate arm idle timer failed session:%s, err:%v", conn.session, err)
		return nil, gnet.Close
	}
	conn.timerId = id
	s.mu.Lock()
	s.conns[conn.session] = conn
	s.mu.Unlock()
	mlog.Debugf("gate open session:%s, timer:%d", conn.session, id)
	return
}

func (s *Server) OnClose(c gnet.Conn, err error) (action gnet.Action) {
	conn, ok := c.Context().(*Conn)
	if !ok {
		return
	}
	// 连接主动关闭时取消空闲定时器, 取消已触发的定时器只是无操作
	if ok, cerr := s.opt.Clock.CancelTimer(conn.timerId); cerr != nil {
		mlog.Errorf("gate cancel timer failed session:%s, err:%v", conn.session, cerr)
	} else {
		mlog.Debugf("gate close session:%s, timer cancelled:%v, err:%v", conn.session, ok, err)
	}
	s.mu.Lock()
	delete(s.conns, conn.session)
	s.mu.Unlock()
	return
}

func (s *Server) OnTraffic(c gnet.Conn) (action gnet.Action) {
	conn, ok := c.Context().(*Conn)
	if !ok {
		return gnet.Close
	}
	buf, _ := c.Next(-1)
	// 有流量, 空闲期限顺延
	if ok, err := s.opt.Clock.UpdateTimer(conn.timerId, utime.NowMs()+s.opt.IdleTimeoutMs); err != nil || !ok {
		mlog.Warnf("gate renew timer failed session:%s, ok:%v, err:%v", conn.session, ok, err)
	}
	if out := s.opt.OnTraffic(conn, buf); len(out) > 0 {
		c.Write(out)
	}
	return
}

// reapLoop 收取到期定时器并关掉对应连接
func (s *Server) reapLoop() {
	for {
		select {
		case <-s.quit:
			return
		case p := <-s.expire:
			session, _ := p.Data.(string)
			s.mu.Lock()
			conn := s.conns[session]
			delete(s.conns, session)
			s.mu.Unlock()
			if conn == nil {
				continue
			}
			mlog.Infof("gate idle kick session:%s, now:%d", session, p.NowTs)
			//不在eventloop协程里, 用异步关闭
			if err := conn.c.CloseWithCallback(nil); err != nil {
				mlog.Errorf("gate close session:%s, err:%v", session, err)
			}
		}
	}
}

func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
