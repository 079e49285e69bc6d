package reactor

// BootstrapScript is the inert client bootstrap template (spec.md §6,
// "External Interfaces": bootstrap script). It wires a browser's document
// into a Delegate via the `weaver.push` signal-definition calls emitted by
// the renderer (spec.md §4.3) and a websocket Wire back to the server.
// This module never executes it — a host serving a browser client embeds
// it verbatim in the initial HTML response.
const BootstrapScript = `
(function () {
  window.weaver = window.weaver || { queue: [] };
  var w = window.weaver;

  w.push = function (def) {
    w.queue.push(def);
  };

  w.connect = function (url) {
    var socket = new WebSocket(url);
    socket.onmessage = function (ev) {
      var update = JSON.parse(ev.data);
      w.onUpdate && w.onUpdate(update);
    };
    w.send = function (cmd) {
      socket.send(JSON.stringify(cmd));
    };
    return socket;
  };
})();
`
