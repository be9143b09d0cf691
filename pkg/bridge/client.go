package bridge

// ClientScript is the browser side of the bridge. It reports the current
// URL on connect and on every hashchange, inserts partial frames into
// the element matched by their target selector and follows navigate
// frames. Serve it as JavaScript and load it with:
//
//	<script src="/fragment.js" data-ws="/ws"></script>
const ClientScript = `(function() {
    'use strict';

    var script = document.currentScript;
    var path = (script && script.getAttribute('data-ws')) || '/ws';
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function send(frame) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(frame));
        }
    }

    function report() {
        send({type: 'hashchange', href: location.href});
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + path);

        ws.onopen = function() {
            reconnectDelay = 1000;
            report();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'partial':
                    var el = document.querySelector(msg.target);
                    if (el) {
                        el.innerHTML = msg.html;
                    }
                    break;

                case 'navigate':
                    location.href = msg.href;
                    break;

                case 'error':
                    console.error('[fragment] ' + msg.code + ': ' + msg.message);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    window.addEventListener('hashchange', report);

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
`
