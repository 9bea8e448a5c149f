package vizserver

// homePage is the embedded browser client. It draws each boid as a
// triangle pointing along its heading, colored by heading angle, and
// shows the tick count and polarization in the corner.
const homePage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Boidswarm</title>
<style>
  body { margin: 0; background: #000; color: #ddd; font: 13px monospace; }
  #hud { position: fixed; top: 8px; left: 8px; }
  canvas { display: block; margin: 0 auto; }
</style>
</head>
<body>
<div id="hud">connecting&hellip;</div>
<canvas id="view" width="800" height="800"></canvas>
<script>
var canvas = document.getElementById("view");
var ctx = canvas.getContext("2d");
var hud = document.getElementById("hud");

var ws = new WebSocket("ws://" + location.host + "/ws");
ws.onclose = function () { hud.textContent = "disconnected"; };
ws.onmessage = function (ev) {
	var f = JSON.parse(ev.data);
	hud.textContent = "tick " + f.tick + "  polarization " + f.polarization.toFixed(3);

	var sx = canvas.width / f.extent[0];
	var sy = canvas.height / f.extent[1];
	ctx.fillStyle = "#000";
	ctx.fillRect(0, 0, canvas.width, canvas.height);

	var size = 6;
	for (var i = 0; i < f.boids.length; i++) {
		var b = f.boids[i];
		var x = b.pos[0] * sx;
		var y = canvas.height - b.pos[1] * sy;
		var a = Math.atan2(-b.vel[1], b.vel[0]);
		var hue = (Math.atan2(b.vel[1], b.vel[0]) * 180 / Math.PI + 360) % 360;
		ctx.save();
		ctx.translate(x, y);
		ctx.rotate(a);
		ctx.fillStyle = "hsl(" + hue + ", 90%, 60%)";
		ctx.beginPath();
		ctx.moveTo(size, 0);
		ctx.lineTo(-size / 2, size / 3);
		ctx.lineTo(-size / 2, -size / 3);
		ctx.closePath();
		ctx.fill();
		ctx.restore();
	}
};
</script>
</body>
</html>
`
